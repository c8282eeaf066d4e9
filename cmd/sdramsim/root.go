package main

import (
	"errors"
	"flag"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultEnvFile = "sdramsim.env"

func newRootCmd(out io.Writer) *cobra.Command {
	loadEnvFile()

	rootCmd := &cobra.Command{
		Use:   "sdramsim",
		Short: "sdramsim simulates an SDR SDRAM controller and its device.",
		Long: `sdramsim simulates an SDR SDRAM controller cycle by cycle, ` +
			`together with a device model that checks every datasheet ` +
			`constraint. Flag defaults can be set with SDRAMSIM_* ` +
			`environment variables or in ` + defaultEnvFile + `.`,
		SilenceUsage: true,
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.PersistentFlags().AddFlagSet(goFlags())

	rootCmd.AddCommand(
		newRunCmd(),
		newTimingCmd(),
		newTrafficCmd(),
	)

	return rootCmd
}

// goFlags exposes the glog flags on the command line.
func goFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("glog", pflag.ContinueOnError)
	fs.AddGoFlagSet(flag.CommandLine)

	return fs
}

// loadEnvFile loads the file named by SDRAMSIM_ENV_FILE, or sdramsim.env.
// Variables that are already set win.
func loadEnvFile() {
	path := envString("SDRAMSIM_ENV_FILE", defaultEnvFile)

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		glog.Warningf("cannot load %s: %v", path, err)
	}
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return def
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		glog.Warningf("ignoring %s=%q: %v", key, v, err)
		return def
	}

	return n
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		glog.Warningf("ignoring %s=%q: %v", key, v, err)
		return def
	}

	return f
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		glog.Warningf("ignoring %s=%q: %v", key, v, err)
		return def
	}

	return b
}
