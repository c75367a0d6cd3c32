// Command databag encrypts and decrypts Chef-style encrypted data bag items
// offline with a shared secret.
//
//	databag decrypt encrypted.json plain.json [secret]
//	databag encrypt plain.json encrypted.json [secret]
//	databag history
package main

import "github.com/lovincyrus/databag/internal/cli"

func main() {
	cli.Run(cli.Main)
}
