// Command slide encrypts a set of chosen plaintexts and recovers the key
// schedule from the resulting corpus with the slide attack. With -seed the
// S-box and keys are drawn at random; with -random the plaintexts are too.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"SlideLab/server/internal/pkg/encryption"
	"SlideLab/server/internal/pkg/slide"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "slide:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("slide", flag.ContinueOnError)
	fs.SetOutput(out)
	plaintextsFlag := fs.String("plaintexts", "0,81", "comma separated chosen plaintexts")
	keysFlag := fs.String("keys", "70,8", "comma separated round keys used to build the corpus")
	sboxFlag := fs.String("sbox", "", "comma separated 16-entry s-box (default: reference table)")
	rounds := fs.Int("rounds", encryption.ReferenceRounds, "number of rounds")
	limit := fs.Int("confirm-limit", 0, "check only this many corpus entries when confirming (0 = all)")
	seed := fs.Int64("seed", 0, "draw the s-box and keys from this seed instead of -sbox and -keys")
	random := fs.Int("random", 0, "encrypt this many random plaintexts instead of -plaintexts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	seeded := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seeded = true
		}
	})
	if *random < 0 || *random > encryption.BlockSpace {
		return fmt.Errorf("-random: %w: %d not in [0, %d]", encryption.ErrDomain, *random, encryption.BlockSpace)
	}
	rng := rand.New(rand.NewSource(*seed))

	if seeded {
		cipher, err := encryption.NewRandomCipher(rng, *rounds)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "sbox %v\n", cipher.SBox().Ints())
		plaintexts, err := choosePlaintexts(rng, *random, *plaintextsFlag)
		if err != nil {
			return err
		}
		return attackWith(cipher, plaintexts, *limit, out)
	}

	sbox := encryption.BuildSBox()
	if *sboxFlag != "" {
		values, err := parseInts(*sboxFlag)
		if err != nil {
			return fmt.Errorf("-sbox: %w", err)
		}
		if sbox, err = encryption.NewSBox(values); err != nil {
			return fmt.Errorf("-sbox: %w", err)
		}
	}

	keys, err := parseBlocks(*keysFlag)
	if err != nil {
		return fmt.Errorf("-keys: %w", err)
	}
	cipher, err := encryption.NewCipher(sbox, keys, *rounds)
	if err != nil {
		return err
	}
	plaintexts, err := choosePlaintexts(rng, *random, *plaintextsFlag)
	if err != nil {
		return err
	}
	return attackWith(cipher, plaintexts, *limit, out)
}

// choosePlaintexts draws n random blocks from rng, or parses list when n is zero.
// Call it after the cipher is built so a seeded run draws keys first.
func choosePlaintexts(rng *rand.Rand, n int, list string) ([]encryption.Block, error) {
	if n > 0 {
		return encryption.RandomPlaintexts(rng, n), nil
	}
	blocks, err := parseBlocks(list)
	if err != nil {
		return nil, fmt.Errorf("-plaintexts: %w", err)
	}
	return blocks, nil
}

func attackWith(cipher *encryption.Cipher, plaintexts []encryption.Block, limit int, out io.Writer) error {
	sbox, rounds := cipher.SBox(), cipher.Rounds()
	corpus := slide.GenerateCorpus(cipher, plaintexts)
	for _, o := range corpus.Observations() {
		fmt.Fprintf(out, "observation %3d -> %3d\n", o.Plaintext, o.Ciphertext)
	}

	result, err := slide.Recover(corpus, sbox, rounds, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d slide pairs, %d trials, %d candidates\n",
		result.SlidePairs, result.Trials, len(result.Candidates))
	if !result.Found() {
		fmt.Fprintln(out, "no key confirmed")
		return nil
	}
	for _, c := range result.Confirmed {
		fmt.Fprintf(out, "confirmed k0=%d k1=%d\n", c.K0, c.K1)
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseBlocks(s string) ([]encryption.Block, error) {
	values, err := parseInts(s)
	if err != nil {
		return nil, err
	}
	return encryption.ParseBlocks(values)
}
