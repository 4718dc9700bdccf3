package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/liyue/tracemap/internal/config"
	"github.com/liyue/tracemap/internal/dataset"
	"github.com/liyue/tracemap/internal/domain"
	"github.com/liyue/tracemap/internal/generator"
)

func main() {
	def := generator.DefaultConfig()
	var (
		profile        = flag.String("profile", "", "YAML profile overriding the generator defaults")
		users          = flag.Int("users", def.NumUsers, "number of users in the population")
		contacts       = flag.Int("contacts", def.NumContacts, "number of contact records to generate")
		indirectChance = flag.Float64("indirect-chance", def.IndirectChance, "probability of a contact being transitive")
		repeatChance   = flag.Float64("repeat-chance", def.RepeatChance, "probability of an encounter repeating at consecutive timestamps")
		seed           = flag.Int64("seed", def.Seed, "random seed for deterministic generation")
		output         = flag.String("output", "data/records.json", "path to write the dataset")
		uploadObject   = flag.String("upload", "", "object name to publish the dataset to configured object storage")
		writeStdout    = flag.Bool("stdout", false, "write the dataset to stdout instead of a file")
	)
	flag.Parse()

	genCfg := def
	if *profile != "" {
		loaded, err := generator.LoadProfile(*profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load profile: %v\n", err)
			os.Exit(1)
		}
		genCfg = loaded
	} else {
		genCfg.NumUsers = *users
		genCfg.NumContacts = *contacts
		genCfg.IndirectChance = clampProbability(*indirectChance)
		genCfg.RepeatChance = clampProbability(*repeatChance)
		genCfg.Seed = *seed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(records); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *uploadObject != "" {
		if err := upload(ctx, *uploadObject, records); err != nil {
			fmt.Fprintf(os.Stderr, "failed to upload dataset: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "Generated %d records and uploaded as %s\n", len(records), *uploadObject)
		return
	}

	if err := dataset.WriteFile(*output, records); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "Generated %d records into %s\n", len(records), *output)
}

func upload(ctx context.Context, object string, records []domain.ContactRecord) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	objectStore, err := dataset.NewObjectStore(dataset.ObjectStoreConfig{
		Endpoint:  cfg.Dataset.Endpoint,
		AccessKey: cfg.Dataset.AccessKey,
		SecretKey: cfg.Dataset.SecretKey,
		UseSSL:    cfg.Dataset.UseSSL,
		Bucket:    cfg.Dataset.Bucket,
	})
	if err != nil {
		return err
	}
	if err := objectStore.Init(ctx); err != nil {
		return err
	}
	return objectStore.Upload(ctx, object, records)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
