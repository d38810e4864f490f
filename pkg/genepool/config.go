package genepool

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ReproductionMode selects how a decisive game's winner produces the
// offspring that replaces the loser, per spec.md §4.9.
type ReproductionMode uint8

const (
	// Cloning copies the winner alone (mutated) into the loser's slot.
	Cloning ReproductionMode = iota
	// Mating builds the offspring from both parents' gene slots, per
	// eval.NewGenomeFromParents.
	Mating
)

// Config is a gene-pool run's configuration, grounded on
// original_source/include/Utility/Configuration.h and spec.md §6's
// "Gene-pool configuration file": `key = value` lines, `#` comments,
// parameter names case-insensitive.
type Config struct {
	MaxSimultaneousGames int
	PoolPopulation       int
	PoolCount            int
	PoolSwapInterval     int
	Reproduction         ReproductionMode
	GenomeFile           string
	InitialMutations     int

	MinGameTime       time.Duration
	MaxGameTime       time.Duration
	GameTimeIncrement time.Duration
	OscillatingTime   bool

	// SeedFile and SeedID implement the optional "seed = <file>[/<id>]"
	// key: when the genome file is absent or empty, a pool is
	// bootstrapped by cloning and scramble-mutating this genome instead
	// of starting from nothing.
	SeedFile  string
	SeedID    uint64
	SeedIDSet bool
	HasSeed   bool
}

var requiredKeys = []string{
	"maximum simultaneous games",
	"gene pool population",
	"gene pool count",
	"pool swap interval",
	"reproduction type",
	"gene pool file",
	"initial mutations",
	"minimum game time",
	"maximum game time",
	"game time increment",
	"oscillating time",
}

// LoadConfig reads path in the "key = value" format described above and
// returns the parsed Config plus any keys present in the file but not
// recognized (spec.md §7's "Unrecognized configuration key: logged and
// listed at start; not fatal" — the caller decides what to do with them).
func LoadConfig(path string) (*Config, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	raw, err := parseKeyValueFile(f)
	if err != nil {
		return nil, nil, err
	}

	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, nil, fmt.Errorf("genepool: config file %s: missing required key %q", path, key)
		}
	}

	cfg := &Config{}
	var parseErr error
	asInt := func(key string) int {
		n, err := strconv.Atoi(strings.TrimSpace(raw[key]))
		if err != nil {
			parseErr = fmt.Errorf("genepool: config key %q: %w", key, err)
		}
		return n
	}
	asDuration := func(key string) time.Duration {
		seconds, err := strconv.ParseFloat(strings.TrimSpace(raw[key]), 64)
		if err != nil {
			parseErr = fmt.Errorf("genepool: config key %q: %w", key, err)
		}
		return time.Duration(seconds * float64(time.Second))
	}
	asBool := func(key, yes, no string) bool {
		v := strings.ToLower(strings.TrimSpace(raw[key]))
		switch v {
		case yes:
			return true
		case no:
			return false
		default:
			parseErr = fmt.Errorf("genepool: config key %q: value %q is neither %q nor %q", key, raw[key], yes, no)
			return false
		}
	}

	cfg.MaxSimultaneousGames = asInt("maximum simultaneous games")
	cfg.PoolPopulation = asInt("gene pool population")
	cfg.PoolCount = asInt("gene pool count")
	cfg.PoolSwapInterval = asInt("pool swap interval")
	if asBool("reproduction type", "mating", "cloning") {
		cfg.Reproduction = Mating
	} else {
		cfg.Reproduction = Cloning
	}
	cfg.GenomeFile = strings.TrimSpace(raw["gene pool file"])
	cfg.InitialMutations = asInt("initial mutations")
	cfg.MinGameTime = asDuration("minimum game time")
	cfg.MaxGameTime = asDuration("maximum game time")
	cfg.GameTimeIncrement = asDuration("game time increment")
	cfg.OscillatingTime = asBool("oscillating time", "yes", "no")
	if parseErr != nil {
		return nil, nil, parseErr
	}
	if cfg.MaxGameTime < cfg.MinGameTime {
		return nil, nil, fmt.Errorf("genepool: maximum game time (%v) must be greater than minimum game time (%v)", cfg.MaxGameTime, cfg.MinGameTime)
	}

	if seed, ok := raw["seed"]; ok {
		seed = strings.TrimSpace(seed)
		if file, idText, found := strings.Cut(seed, "/"); found {
			id, err := strconv.ParseUint(idText, 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("genepool: config key \"seed\": bad id %q: %w", idText, err)
			}
			cfg.SeedFile, cfg.SeedID, cfg.SeedIDSet, cfg.HasSeed = file, id, true, true
		} else {
			cfg.SeedFile, cfg.HasSeed = seed, true
		}
	}

	var unused []string
	known := map[string]bool{"seed": true}
	for _, key := range requiredKeys {
		known[key] = true
	}
	for key := range raw {
		if !known[key] {
			unused = append(unused, key)
		}
	}
	return cfg, unused, nil
}

// parseKeyValueFile implements Configuration's file grammar: one
// "parameter = value" pair per line, case-insensitive parameter names,
// "#"-prefixed comments, blank lines ignored.
func parseKeyValueFile(r io.Reader) (map[string]string, error) {
	result := make(map[string]string)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("genepool: config line %d: expected \"parameter = value\", got %q", line, text)
		}
		result[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return result, scanner.Err()
}
