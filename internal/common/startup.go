package common

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	commonconfig "github.com/G-Research/rainbow/internal/common/config"
	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
)

// BindCommandlineArguments makes every flag in flags resolvable through v, so that a value set on the command line
// overrides the same key from a config file.
func BindCommandlineArguments(v *viper.Viper, flags *pflag.FlagSet) error {
	return errors.WithStack(v.BindPFlags(flags))
}

// LoadConfig unmarshals the configuration held by v into config. If userSpecifiedConfig is not empty, that yaml
// file is merged in first; values from bound command line flags take precedence over it.
func LoadConfig(v *viper.Viper, config interface{}, userSpecifiedConfig string, hooks ...mapstructure.DecodeHookFunc) error {
	if userSpecifiedConfig != "" {
		v.SetConfigFile(userSpecifiedConfig)
		if err := v.ReadInConfig(); err != nil {
			return errors.WithMessagef(err, "error reading config from %s", userSpecifiedConfig)
		}
	}
	if err := v.Unmarshal(config, commonconfig.DecodeHook(hooks...)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// ServeMetrics exposes the default prometheus registry on /metrics. A port of zero disables the server.
func ServeMetrics(port uint16) (shutdown func()) {
	if port == 0 {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return ServeHttp(port, mux)
}

func ServeHttp(port uint16, mux http.Handler) (shutdown func()) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Starting http server listening on %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server failure")
		}
	}()

	return func() {
		ctx, cancel := rainbowcontext.WithTimeout(rainbowcontext.Background(), 5*time.Second)
		defer cancel()
		ctx.Log.Infof("Stopping http server listening on %d", port)
		if err := srv.Shutdown(ctx); err != nil {
			ctx.Log.WithError(err).Warn("http server did not shut down cleanly")
		}
	}
}
