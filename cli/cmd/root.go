package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	serverAddress string
	displayName   string
)

const (
	serverAddressKey = "server_address"
	displayNameKey   = "display_name"
)

var rootCmd = &cobra.Command{
	Use:   "realtime-cli",
	Short: "Operator client for the BusinessOps realtime gateway",
	Long: `realtime-cli connects to the suite's realtime gateway over websocket.
Use it to join chat rooms, watch live traffic, and send messages while
debugging the gateway.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.realtime-cli.yaml)")
	rootCmd.PersistentFlags().String("server", "ws://localhost:8090/ws", "websocket address of the realtime gateway")
	rootCmd.PersistentFlags().String("name", "", "display name announced to other room members")

	viper.BindPFlag(serverAddressKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(displayNameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.SetDefault(serverAddressKey, "ws://localhost:8090/ws")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".realtime-cli")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	serverAddress = viper.GetString(serverAddressKey)
	displayName = viper.GetString(displayNameKey)
}
