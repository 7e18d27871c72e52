/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package driver

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Configuration holds the service settings: which feed endpoint to subscribe
// to and what MQTT broker the bridge republishes transactions on.
type Configuration struct {
	FeedEndpoint string
	// FeedTopics name the feed subscriptions, comma separated in the file.
	FeedTopics []string

	BridgeScheme    string
	BridgeHost      string
	BridgePort      int
	BridgeUser      string
	BridgePassword  string
	BridgeClientId  string
	BridgeTopic     string
	BridgeQos       byte
	BridgeKeepAlive int
}

// CreateConfiguration loads the service configuration from a settings map.
func CreateConfiguration(configMap map[string]string) (*Configuration, error) {
	config := new(Configuration)
	err := load(configMap, config)
	return config, err
}

// LoadConfigFromFile reads the settings map from the [Driver] table of a
// TOML file.
func LoadConfigFromFile(path string) (*Configuration, error) {
	var file struct {
		Driver map[string]string
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return CreateConfiguration(file.Driver)
}

// load by reflect to check map key and then fetch the value
func load(configMap map[string]string, config *Configuration) error {
	configValue := reflect.ValueOf(config).Elem()
	for i := 0; i < configValue.NumField(); i++ {
		typeField := configValue.Type().Field(i)
		valueField := configValue.Field(i)

		val, ok := configMap[typeField.Name]
		if !ok {
			return fmt.Errorf("config is missing property '%s'", typeField.Name)
		}
		if !valueField.CanSet() {
			return fmt.Errorf("cannot set field '%s'", typeField.Name)
		}

		switch valueField.Kind() {
		case reflect.Int:
			intVal, err := strconv.Atoi(val)
			if err != nil {
				return err
			}
			valueField.SetInt(int64(intVal))
		case reflect.Uint8:
			// uint8 is the same as byte
			byteVal, err := strconv.Atoi(val)
			if err != nil {
				return err
			}
			valueField.SetUint(uint64(byteVal))
		case reflect.String:
			valueField.SetString(val)
		case reflect.Slice:
			splitVals := strings.Split(val, ",")
			valueField.Set(reflect.ValueOf(splitVals))
		default:
			return fmt.Errorf("config uses unsupported property kind "+
				"%v for field %v", valueField.Kind(), typeField.Name)
		}
	}
	return nil
}
