package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/raffle-network/raffle-deploy/configs"
	"github.com/raffle-network/raffle-deploy/internal/localnode"
	"github.com/raffle-network/raffle-deploy/internal/logger"
	"github.com/raffle-network/raffle-deploy/internal/raffle"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "raffle-deploy"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Deploys the Raffle contract and, on development networks, its mock VRF coordinator",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Initialize(slog.LevelInfo)

		// Secrets usually live in .env; a missing file is fine.
		_ = godotenv.Load()
		_ = viper.BindEnv("deploy.wallet.private-key", "DEPLOYER_PRIVATE_KEY")
		_ = viper.BindEnv("deploy.rpc-url", "RPC_URL")

		if err := configs.MergeDefaults(viper.GetViper()); err != nil {
			return err
		}

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			viper.AddConfigPath(execDir)
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				slog.Debug("no config file found, using embedded defaults and flags")
			} else {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
		} else {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		}

		if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		level, err := logger.ParseLevel(configs.Values.LogLevel)
		if err != nil {
			return err
		}
		logger.Initialize(level)

		slog.With("network", configs.Values.Deploy.Network).Debug("configuration loaded")

		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(raffle.CMD)
	rootCmd.AddCommand(raffle.NetworksCMD)
	rootCmd.AddCommand(localnode.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
