package config

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DecodeHook returns a viper option decoding durations and comma separated lists, plus any extra hooks.
// Viper keeps only the last DecodeHook option it is given, so all hooks must be composed here.
func DecodeHook(extra ...mapstructure.DecodeHookFunc) viper.DecoderConfigOption {
	hooks := []mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	}
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(append(hooks, extra...)...))
}

// StringToTypeHookFunc returns a hook that converts strings into T using parse. Values that are not strings, or
// targets that are not of type T, are passed through untouched.
func StringToTypeHookFunc[T any](parse func(string) (T, error)) mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		// check that src and target types are valid
		if f.Kind() != reflect.String || t != target {
			return data, nil
		}
		return parse(data.(string))
	}
}
