package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lovincyrus/databag/internal/databag"
	"github.com/lovincyrus/databag/internal/store"
)

// DecryptCommand decrypts one item file and writes the plain item.
type DecryptCommand struct {
	SecretFile   string `short:"s" long:"secret-file" value-name:"PATH" description:"Secret file (default: $DATABAG_SECRET_FILE or /etc/chef/encrypted_data_bag_secret)"`
	PromptSecret bool   `short:"p" long:"prompt-secret" description:"Read the secret from the terminal"`
	MinVersion   *int   `long:"min-version" value-name:"N" description:"Reject values older than format version N (default: $DATABAG_MIN_VERSION or 0)"`
	Format       string `short:"f" long:"format" choice:"json" choice:"yaml" description:"Output format (default: $DATABAG_OUTPUT_FORMAT or json)"`

	Args struct {
		Encrypted string `required:"yes" positional-arg-name:"ENCRYPTED" description:"Encrypted item file, - for stdin"`
		Output    string `required:"yes" positional-arg-name:"OUTPUT" description:"Where to write the decrypted item, - for stdout"`
		Secret    string `positional-arg-name:"SECRET" description:"Secret file"`
	} `positional-args:"yes"`

	app *app
}

func (c *DecryptCommand) Execute(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	a := c.app
	log := a.logger().WithField("input", c.Args.Encrypted)

	minVersion := a.cfg.MinVersion
	if c.MinVersion != nil {
		minVersion = *c.MinVersion
	}
	format := a.cfg.OutputFormat
	if c.Format != "" {
		format = c.Format
	}

	entry := store.HistoryEntry{Action: store.ActionDecrypt, Source: c.Args.Encrypted}
	plain, err := c.decrypt(log, &entry, databag.Version(minVersion))
	entry.Outcome = outcome(err)
	a.record(entry)
	if err != nil {
		return err
	}

	out, err := render(plain, format)
	if err != nil {
		return err
	}
	if err := writeOutput(c.Args.Output, out, a.stdout); err != nil {
		return err
	}
	log.WithField("output", c.Args.Output).Debug("wrote decrypted item")
	return nil
}

func (c *DecryptCommand) decrypt(log *logrus.Entry, entry *store.HistoryEntry, minVersion databag.Version) (map[string]any, error) {
	a := c.app

	data, err := readInput(c.Args.Encrypted, a.stdin)
	if err != nil {
		return nil, err
	}
	item, err := databag.ParseItem(data)
	if err != nil {
		return nil, err
	}

	versions := databag.Versions(item)
	entry.ItemID = databag.ItemID(item)
	entry.Versions = formatVersions(versions)
	log = log.WithFields(logrus.Fields{"item": entry.ItemID, "versions": entry.Versions})
	log.Debug("parsed item")
	if len(versions) > 0 && versions[0] == databag.Version0 {
		log.Warn("item has unversioned values; re-encrypt it to use an authenticated format")
	}

	key, err := a.loadSecret(c.PromptSecret, c.Args.Secret, c.SecretFile)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	if fp, err := key.Fingerprint(); err == nil {
		entry.KeyFingerprint = fp
		log = log.WithField("secret", fp)
	}

	plain, err := databag.DecryptItem(item, key, databag.WithMinimumVersion(minVersion))
	if err != nil {
		return nil, err
	}
	log.WithField("fields", len(plain)).Debug("decrypted item")
	return plain, nil
}
