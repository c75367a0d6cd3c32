// Command decrypt-data-bag decrypts an encrypted data bag item and writes it
// as formatted JSON.
//
//	decrypt-data-bag encrypted_databag.json new_unencrypted_databag.json [encrypted_data_bag_secret]
package main

import "github.com/lovincyrus/databag/internal/cli"

func main() {
	cli.Run(cli.DecryptMain)
}
