// Command quote evaluates a YAML quote file with the pricing engine and
// prints the resulting quote as JSON.
//
//	quote -f cart.yaml
//	quote -f upgrade.yaml -merge
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/backend-pricing/internal/common"
	"github.com/noah-isme/backend-pricing/internal/config"
	"github.com/noah-isme/backend-pricing/internal/quote"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	file := fs.String("f", "", "YAML quote file")
	merge := fs.Bool("merge", false, "treat the file as a merge request with current and next sections")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-f is required")
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	svc := &quote.Service{
		Logger:               zerolog.Nop(),
		Validate:             quote.NewValidator(),
		DiscountsAffectTaxes: cfg.DiscountsAffectTaxes,
		IncludeCalculatedTax: cfg.IncludeCalculatedTax,
		MaxItems:             cfg.QuoteMaxItems,
	}

	var result quote.Quote
	if *merge {
		var req quote.MergeRequest
		if err := yaml.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("decode %s: %w", *file, err)
		}
		result, err = svc.Merge(context.Background(), req)
	} else {
		var req quote.QuoteRequest
		if err := yaml.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("decode %s: %w", *file, err)
		}
		result, err = svc.Quote(context.Background(), req)
	}
	if err != nil {
		return describe(err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// describe flattens validation details into the error message.
func describe(err error) error {
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Details == nil {
		return err
	}
	details, mErr := json.Marshal(appErr.Details)
	if mErr != nil {
		return err
	}
	return fmt.Errorf("%s: %s", appErr.Message, details)
}
