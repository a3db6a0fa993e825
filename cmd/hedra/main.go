// Command hedra builds convex hulls, polygon soups and simplified meshes from
// point and Wavefront OBJ files.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// subCommand is a command with its own configuration. Every flag can also be
// set through the <EnvPrefix>_<FLAG> environment variable or the config file.
type subCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper

	EnvPrefix string
}

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hedra",
		Short: "hedra: convex hulls, polygon soups and mesh simplification",
		Long: `
hedra reads point clouds and polygon meshes and runs the geometry core on them:
convex hull construction, AABB polygon soup serialization and quadric edge
collapse simplification.
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden by environment variables and flags.")
	return cmd
}()

var rootConf = viper.New()

// subcommands holds every registered subcommand.
var subcommands []*subCommand

func check(err error) {
	if err != nil {
		glog.Fatalf("%+v", err)
	}
}

// register adds sc to the root command and binds its configuration.
func register(sc *subCommand) {
	rootCmd.AddCommand(sc.Cmd)
	sc.Conf = viper.New()
	check(sc.Conf.BindPFlags(sc.Cmd.Flags()))
	check(sc.Conf.BindPFlags(rootCmd.PersistentFlags()))
	sc.Conf.AutomaticEnv()
	sc.Conf.SetEnvPrefix(sc.EnvPrefix)
	subcommands = append(subcommands, sc)
}

func init() {
	check(rootConf.BindPFlags(rootCmd.PersistentFlags()))
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)

	cobra.OnInitialize(func() {
		cfg := rootConf.GetString("config")
		if cfg == "" {
			return
		}
		for _, sc := range subcommands {
			sc.Conf.SetConfigFile(cfg)
			check(errors.Wrapf(sc.Conf.ReadInConfig(), "reading config %s", cfg))
		}
	})
}

func main() {
	goflag.Parse()
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
