/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"strings"

	devConfig "github.com/Daskott/tapcard/dev/config"
	"github.com/Daskott/tapcard/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Secrets that are usually provided through the env (or .env) instead of the config file
var envBindings = map[string]string{
	"sqlite.passPhrase":             "TAPCARD_SQLITE_PASS_PHRASE",
	"tapcard.privateKeyPem":         "TAPCARD_PRIVATE_KEY_PEM",
	"google.applicationCredentials": "GOOGLE_APPLICATION_CREDENTIALS",
	"twilio.accountSid":             "TWILIO_ACCOUNT_SID",
	"twilio.authToken":              "TWILIO_AUTH_TOKEN",
	"twilio.messagingServiceSid":    "TWILIO_MESSAGING_SERVICE_SID",
}

func init() {
	rootCmd.AddCommand(createServerCmd())
}

func createServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start a tapcard server",
		Long: `Start the tapcard API server. It serves public cards, their vCard
downloads & QR codes, along with the authenticated card & contact API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := serverConfig()
			if err != nil {
				return err
			}

			server.Start(config, isDevEnv)
			return nil
		},
	}
}

// serverConfig reads --config, or the built-in dev config with --dev.
// Any env var in envBindings overrides the matching config key.
func serverConfig() (*viper.Viper, error) {
	config := viper.New()

	for key, env := range envBindings {
		if err := config.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	config.AutomaticEnv()

	if isDevEnv {
		config.SetConfigType("yaml")
		if err := config.ReadConfig(strings.NewReader(devConfig.SERVER_YML)); err != nil {
			return nil, formattedError("error reading dev server config: %v", err)
		}
		return config, nil
	}

	if cfgFile == "" {
		return nil, formattedError("a server config file is required, use --config <path>")
	}

	config.SetConfigFile(cfgFile)
	if err := config.ReadInConfig(); err != nil {
		return nil, formattedError("error reading server config file: %v", err)
	}

	return config, nil
}
