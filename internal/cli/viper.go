// Package cli binds command-line flags and environment variables to program
// options through cobra and viper.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Opt is a single command-line option.
type Opt struct {
	DestP   interface{} // pointer to the destination
	Flag    string
	Default interface{}
	Desc    string
}

// NewOpt creates a new command line option.
func NewOpt(destP interface{}, flag string, dflt interface{}, desc string) Opt {
	return Opt{
		DestP:   destP,
		Flag:    flag,
		Default: dflt,
		Desc:    desc,
	}
}

// Program parses CLI options.
type Program struct {
	// Run is invoked by cobra on execute.
	Run func(cmd *cobra.Command, args []string) error
	// Name is the name of the program in help usage and the env var prefix.
	Name  string
	Short string
	// Args validates positional arguments. Defaults to cobra.NoArgs.
	Args cobra.PositionalArgs
	// Opts are the command line/env var options to the program.
	Opts []Opt
}

// NewCommand creates a cobra command that reads its options from flags and
// from environment variables prefixed with the upper-case program name.
// Flags take precedence over the environment.
func NewCommand(v *viper.Viper, p *Program) *cobra.Command {
	args := p.Args
	if args == nil {
		args = cobra.NoArgs
	}
	cmd := &cobra.Command{
		Use:   p.Name,
		Short: p.Short,
		Args:  args,
		RunE:  p.Run,
	}
	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(p.Name, "-", "_")))
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	BindOptions(v, cmd, p.Opts)
	return cmd
}

// BindOptions adds opts as persistent flags of cmd, registers them with v and
// loads the resolved values into the destinations before cmd or any of its
// subcommands runs.
func BindOptions(v *viper.Viper, cmd *cobra.Command, opts []Opt) {
	flags := cmd.PersistentFlags()
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			flags.StringVar(destP, o.Flag, d, o.Desc)
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			flags.IntVar(destP, o.Flag, d, o.Desc)
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			flags.BoolVar(destP, o.Flag, d, o.Desc)
		case *float64:
			var d float64
			if o.Default != nil {
				d = o.Default.(float64)
			}
			flags.Float64Var(destP, o.Flag, d, o.Desc)
		case *time.Duration:
			var d time.Duration
			if o.Default != nil {
				d = o.Default.(time.Duration)
			}
			flags.DurationVar(destP, o.Flag, d, o.Desc)
		case *zapcore.Level:
			var d zapcore.Level
			if o.Default != nil {
				d = o.Default.(zapcore.Level)
			}
			LevelVar(flags, destP, o.Flag, d, o.Desc)
		default:
			panic(fmt.Errorf("unknown destination type %T", o.DestP))
		}
		if err := v.BindPFlag(o.Flag, flags.Lookup(o.Flag)); err != nil {
			panic(err)
		}
	}

	prev := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := load(v, opts); err != nil {
			return err
		}
		if prev != nil {
			return prev(c, args)
		}
		return nil
	}
}

func load(v *viper.Viper, opts []Opt) error {
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			*destP = v.GetString(o.Flag)
		case *int:
			*destP = v.GetInt(o.Flag)
		case *bool:
			*destP = v.GetBool(o.Flag)
		case *float64:
			*destP = v.GetFloat64(o.Flag)
		case *time.Duration:
			*destP = v.GetDuration(o.Flag)
		case *zapcore.Level:
			if err := destP.Set(v.GetString(o.Flag)); err != nil {
				return fmt.Errorf("invalid %s: %w", o.Flag, err)
			}
		}
	}
	return nil
}
