package command

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/persistval/internal/persist"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Open a store and print its value",
		ArgsUsage: "KEY",
		Description: "Opens the value stored under KEY the way an application would:\n" +
			"an absent or unusable value resolves to --initial, which is then written.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "initial",
				Usage: "initial value as JSON",
				Value: "null",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "print the stored bytes without opening a store",
			},
		},
		Action: getValue,
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Open a store and set its value",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "string",
				Aliases: []string{"s"},
				Usage:   "treat VALUE as a string instead of JSON",
			},
		},
		Action: setValue,
	}
}

// KeysCommand returns the keys command.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "List stored keys",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "only keys starting with `PREFIX`",
			},
		},
		Action: listKeys,
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"del", "rm"},
		Usage:     "Remove a key from the backend",
		ArgsUsage: "KEY",
		Action:    deleteKey,
	}
}

func parseJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON value %q: %w", s, err)
	}
	return v, nil
}

func openStore(c *cli.Context, env *Env, key string, initial any, extra ...persist.Option) (*persist.Store[any], error) {
	b, err := env.Backend()
	if err != nil {
		return nil, err
	}
	opts, err := env.StoreOptions(key)
	if err != nil {
		return nil, err
	}
	return persist.Open(c.Context, b, key, initial, append(opts, extra...)...)
}

func getValue(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: get KEY")
	}
	key := c.Args().First()

	env, err := getEnv(c)
	if err != nil {
		return err
	}

	if c.Bool("raw") {
		b, err := env.Backend()
		if err != nil {
			return err
		}
		data, err := b.Get(c.Context, key)
		if err != nil {
			return fmt.Errorf("get %q: %w", key, err)
		}
		_, err = writer(c).Write(append(data, '\n'))
		return err
	}

	initial, err := parseJSON(c.String("initial"))
	if err != nil {
		return err
	}
	s, err := openStore(c, env, key, initial)
	if err != nil {
		return err
	}
	defer s.Close()

	return env.Print(c, s.Get())
}

func setValue(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: set KEY VALUE")
	}
	key, raw := c.Args().Get(0), c.Args().Get(1)

	var value any = raw
	if !c.Bool("string") {
		v, err := parseJSON(raw)
		if err != nil {
			return err
		}
		value = v
	}

	env, err := getEnv(c)
	if err != nil {
		return err
	}
	s, err := openStore(c, env, key, value)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Set(value); err != nil {
		return err
	}
	commandLogger(c).Debug("value set", "key", key)
	return env.Print(c, s.Get())
}

func listKeys(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	b, err := env.Backend()
	if err != nil {
		return err
	}
	keys, err := b.Keys(c.Context, c.String("prefix"))
	if err != nil {
		return err
	}
	return env.Print(c, keys)
}

func deleteKey(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: delete KEY")
	}
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	b, err := env.Backend()
	if err != nil {
		return err
	}
	key := c.Args().First()
	if err := b.Delete(c.Context, key); err != nil {
		return err
	}
	commandLogger(c).Info("key deleted", "key", key)
	return nil
}
