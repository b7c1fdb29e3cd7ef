package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"token-minter/internal/wallet"
)

var (
	signKeypair string
	signTx      string
)

func init() {
	signCmd.Flags().StringVar(&signKeypair, "keypair", "", "solana-keygen JSON keypair file")
	signCmd.Flags().StringVar(&signTx, "tx", "-", "base64 transaction, - reads stdin")
	_ = signCmd.MarkFlagRequired("keypair")
	RootCmd.AddCommand(signCmd)
}

// signCmd plays the requester's wallet: it signs a fee transaction
// returned by POST /transaction and prints it for POST /submit-transaction.
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a fee transaction with a local keypair",
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := wallet.KeypairFromFile(signKeypair)
		if err != nil {
			return err
		}
		if err := kp.Connect(ctx); err != nil {
			return err
		}
		defer kp.Disconnect()

		encoded := signTx
		if encoded == "-" {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			encoded = string(raw)
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return errors.New("empty transaction")
		}

		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("decode transaction: %w", err)
		}
		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		if err != nil {
			return fmt.Errorf("parse transaction: %w", err)
		}

		if err := wallet.SignTransaction(ctx, tx, true, kp); err != nil {
			return err
		}

		out, err := tx.ToBase64()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		fmt.Fprintf(cmd.ErrOrStderr(), "signed by %s\n", kp.PublicKey())
		return nil
	},
}
