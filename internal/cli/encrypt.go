package cli

import (
	"fmt"
	"strings"

	"github.com/lovincyrus/databag/internal/databag"
	"github.com/lovincyrus/databag/internal/store"
)

// EncryptCommand encrypts a plain item file so it can be stored with a
// Chef server or in a repository.
type EncryptCommand struct {
	SecretFile    string `short:"s" long:"secret-file" value-name:"PATH" description:"Secret file (default: $DATABAG_SECRET_FILE or /etc/chef/encrypted_data_bag_secret)"`
	PromptSecret  bool   `short:"p" long:"prompt-secret" description:"Read the secret from the terminal"`
	FormatVersion int    `long:"format-version" default:"3" choice:"1" choice:"2" choice:"3" description:"Encrypted item format version"`

	Args struct {
		Plain  string `required:"yes" positional-arg-name:"PLAIN" description:"Plain item file, - for stdin"`
		Output string `required:"yes" positional-arg-name:"OUTPUT" description:"Where to write the encrypted item, - for stdout"`
		Secret string `positional-arg-name:"SECRET" description:"Secret file"`
	} `positional-args:"yes"`

	app *app
}

func (c *EncryptCommand) Execute(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	a := c.app
	version := databag.Version(c.FormatVersion)
	log := a.logger().WithField("input", c.Args.Plain).WithField("version", version.String())

	data, err := readInput(c.Args.Plain, a.stdin)
	if err != nil {
		return err
	}
	item, err := databag.ParseItem(data)
	if err != nil {
		return err
	}

	key, err := a.loadSecret(c.PromptSecret, c.Args.Secret, c.SecretFile)
	if err != nil {
		return err
	}
	defer key.Destroy()

	entry := store.HistoryEntry{
		Action:   store.ActionEncrypt,
		ItemID:   databag.ItemID(item),
		Source:   c.Args.Plain,
		Versions: version.String(),
	}
	entry.KeyFingerprint, _ = key.Fingerprint()

	enc, err := databag.EncryptItem(item, key, version)
	entry.Outcome = outcome(err)
	a.record(entry)
	if err != nil {
		return err
	}

	out, err := render(enc, "json")
	if err != nil {
		return err
	}
	if err := writeOutput(c.Args.Output, out, a.stdout); err != nil {
		return err
	}
	log.WithField("output", c.Args.Output).Debug("wrote encrypted item")
	return nil
}
