package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/G-Research/rainbow/internal/common"
	"github.com/G-Research/rainbow/internal/common/app"
	"github.com/G-Research/rainbow/internal/common/logging"
	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
	"github.com/G-Research/rainbow/internal/rainbow"
	"github.com/G-Research/rainbow/internal/rainbow/configuration"
)

const CustomConfigLocation = "config"

// Hash every id in the keyspace and write the table to standard out.
func generateCmd(a *rainbow.App) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "generate PEPPER",
		Short: "Write the digest of every id in the keyspace to standard out.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, v, args)
			if err != nil {
				return err
			}
			if err := logging.ConfigureLogging(logging.Config{Level: config.LogLevel, Format: config.LogFormat}, cmd.ErrOrStderr()); err != nil {
				return errors.WithStack(&rainbowerrors.ErrInvalidArgument{
					Name:    "logging",
					Value:   config.LogLevel + "/" + config.LogFormat,
					Message: err.Error(),
				})
			}

			ctx, cancel := app.CreateContextWithShutdown(rainbowcontext.Background())
			defer cancel()
			if file := v.ConfigFileUsed(); file != "" {
				ctx.Log.Debugf("Read config from %s", file)
			}

			a.Out = cmd.OutOrStdout()
			_, err = a.Generate(ctx, config)
			return err
		},
	}
	addGenerateFlags(cmd.Flags())
	return cmd
}

func addGenerateFlags(flags *pflag.FlagSet) {
	defaults := configuration.Default()
	flags.String(CustomConfigLocation, "", "Fully qualified path to a yaml configuration file")
	flags.UintP("digits", "n", defaults.Digits, "Number of decimal digits in the keyspace")
	flags.Bool("serial", defaults.Serial, "Hash on a single goroutine instead of a worker pool")
	flags.Int("jobs", defaults.Jobs, "Number of jobs the keyspace is split into (0 for one per CPU)")
	flags.Int("workers", defaults.Workers, "Number of hashing workers (0 for one per CPU)")
	flags.Int("outputBufferSize", defaults.OutputBufferSize, "Records a worker buffers before handing them to the output")
	flags.Int("channelDepth", defaults.ChannelDepth, "Chunks that may be queued for output per worker")
	flags.String("algorithm", string(defaults.Algorithm), "Digest algorithm, one of sha256, sha3-256 or blake3")
	flags.Int("hashWidth", defaults.HashWidth, "Width ids are padded to before hashing (0 for the number of digits)")
	flags.String("padding", defaults.Padding.String(), "Character ids are padded with before hashing, zero or space")
	flags.Duration("progressInterval", defaults.ProgressInterval, "How often progress is logged (0 to disable)")
	flags.Uint16("metricsPort", defaults.MetricsPort, "Port to serve prometheus metrics on (0 to disable)")
	flags.String("logLevel", defaults.LogLevel, "Log level, e.g. debug, info or error")
	flags.String("logFormat", defaults.LogFormat, "Log format, one of text, json or message")
}

// loadConfig merges, lowest priority first, the defaults, the config file, command line flags and the pepper argument.
func loadConfig(cmd *cobra.Command, v *viper.Viper, args []string) (configuration.RainbowConfig, error) {
	config := configuration.Default()
	if err := common.BindCommandlineArguments(v, cmd.Flags()); err != nil {
		return config, err
	}
	if len(args) == 1 {
		v.Set("pepper", args[0])
	}
	err := common.LoadConfig(v, &config, v.GetString(CustomConfigLocation), configuration.DecodeHooks...)
	if err != nil {
		return config, errors.WithStack(&rainbowerrors.ErrInvalidArgument{
			Name:    CustomConfigLocation,
			Value:   v.GetString(CustomConfigLocation),
			Message: err.Error(),
		})
	}
	return config, nil
}
