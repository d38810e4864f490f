// Command evochess is the single entry point for this module: it runs the
// gene-pool breeding loop, validates PGN files, runs the perft/speed test
// suites, enumerates perft move counts, and plays one-off games between
// any mix of human, reference and evolved players.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/profile"
	"github.com/seekerror/logw"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/corvane/evochess/pkg/genepool"
	"github.com/corvane/evochess/pkg/pgn"
	"github.com/corvane/evochess/pkg/player"
	"github.com/corvane/evochess/pkg/reference/handeval"
	"github.com/corvane/evochess/pkg/reference/montecarlo"
	"github.com/corvane/evochess/pkg/search"
)

const usage = `evochess usage:

  evochess -gene-pool <config>       run the breeding loop
  evochess -confirm <pgn>            validate a PGN file
  evochess -test                     run the fast correctness suite
  evochess -perft                    run the full perft suite
  evochess -speed                    measure perft throughput
  evochess -list <depth> [<fen>]     enumerate move counts (perft-style)
  evochess -help                     print this message
  evochess <white> <black> [fen]     play one game between two players

A player specification is one of:
  human                  a move is read from stdin, in SAN or coordinate form
  handeval                the hand-evaluated reference player
  montecarlo               the flat Monte Carlo reference player
  genome:<file>[:<id>]     an evolved genome loaded from a gene-pool file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "-help":
		fmt.Print(usage)
		return
	case "-gene-pool":
		err = runGenePool(ctx, os.Args[2:])
	case "-confirm":
		err = runConfirm(os.Args[2:])
	case "-test":
		err = runSuite(testDepth, true)
	case "-perft":
		err = runSuite(perftDepth, false)
	case "-speed":
		err = runSpeed()
	case "-list":
		err = runList(os.Args[2:])
	default:
		err = runGame(ctx, os.Args[1:])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "evochess:", err)
		os.Exit(1)
	}
}

func runGenePool(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gene-pool", flag.ContinueOnError)
	profileDir := fs.String("profile", "", "write CPU profile data to this directory for the run's duration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("-gene-pool requires exactly one config file argument")
	}

	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir)).Stop()
	}

	cfg, unused, err := genepool.LoadConfig(fs.Arg(0))
	if err != nil {
		return err
	}
	for _, key := range unused {
		logw.Infof(ctx, "gene-pool: unrecognized configuration key %q", key)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pool, err := genepool.NewPool(cfg, rng)
	if err != nil {
		return err
	}
	return pool.Run(ctx)
}

func runConfirm(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("-confirm requires exactly one PGN file argument")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := pgn.Validate(f); err != nil {
		return err
	}
	fmt.Println("ok  ", args[0])
	return nil
}

func runList(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("-list requires a depth and an optional fen argument")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("-list: bad depth %q: %w", args[0], err)
	}

	b := board.NewBoard()
	if len(args) == 2 {
		b, err = board.FromFEN(args[1])
		if err != nil {
			return err
		}
	}

	divide := board.PerftDivide(b, depth)
	var total uint64
	for m, nodes := range divide {
		fmt.Printf("%v: %d\n", m, nodes)
		total += nodes
	}
	fmt.Printf("total: %d\n", total)
	return nil
}

func runGame(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("a game needs two player specifications (white, black)")
	}

	white, err := parsePlayer(args[0])
	if err != nil {
		return fmt.Errorf("white: %w", err)
	}
	black, err := parsePlayer(args[1])
	if err != nil {
		return fmt.Errorf("black: %w", err)
	}

	b := board.NewBoard()
	if len(args) >= 3 {
		b, err = board.FromFEN(args[2])
		if err != nil {
			return err
		}
	}

	clk := clock.New(clock.Config{})
	record := player.PlayGame(ctx, b, clk, white, black)

	for i, m := range record.Moves {
		if i%2 == 0 {
			fmt.Printf("%d.", i/2+1)
		}
		fmt.Printf("%s ", m.San)
	}
	fmt.Printf("\nresult: %+v\n", record.Result)
	return nil
}

// parsePlayer resolves one of the CLI's player specifications into a
// player.Player; see usage above for the recognized forms.
func parsePlayer(spec string) (player.Player, error) {
	switch {
	case spec == "human":
		return newHumanPlayer(), nil
	case spec == "handeval":
		return handeval.NewPlayer(0), nil
	case spec == "montecarlo":
		return montecarlo.NewPlayer(rand.New(rand.NewSource(time.Now().UnixNano()))), nil
	case strings.HasPrefix(spec, "genome:"):
		return parseGenomePlayer(strings.TrimPrefix(spec, "genome:"))
	default:
		return nil, fmt.Errorf("unrecognized player specification %q", spec)
	}
}

func parseGenomePlayer(rest string) (player.Player, error) {
	file, idText, hasID := strings.Cut(rest, ":")
	store := genepool.NewStore(file)
	pools, err := store.LoadPools()
	if err != nil {
		return nil, fmt.Errorf("genome spec %q: %w", rest, err)
	}

	var g *eval.Genome
	if hasID {
		id, err := strconv.ParseUint(idText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("genome spec %q: bad id: %w", rest, err)
		}
		for _, pool := range pools {
			for _, candidate := range pool {
				if candidate.ID == id {
					g = candidate
				}
			}
		}
		if g == nil {
			return nil, fmt.Errorf("genome spec %q: id %d not found in %s", rest, id, file)
		}
	} else {
		for _, pool := range pools {
			if len(pool) > 0 {
				g = pool[0]
				break
			}
		}
		if g == nil {
			return nil, fmt.Errorf("genome spec %q: no genomes found in %s", rest, file)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	calib := search.Calibrate(context.Background(), g, rng)
	return player.NewGeneticPlayer(g, calib.PerNodeTime), nil
}

// humanPlayer reads moves from stdin in either SAN or pure coordinate form.
type humanPlayer struct {
	in *bufio.Reader
}

func newHumanPlayer() *humanPlayer {
	return &humanPlayer{in: bufio.NewReader(os.Stdin)}
}

func (h *humanPlayer) Name() string {
	return "Human"
}

func (h *humanPlayer) ChooseMove(ctx context.Context, b *board.Board, clk *clock.Clock) (board.Move, error) {
	for {
		fmt.Printf("%v to move (fen: %s): ", b.Turn(), b.FEN())
		line, err := h.in.ReadString('\n')
		if err != nil {
			return board.Move{}, fmt.Errorf("human: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m, err := board.ParseSAN(b, line); err == nil {
			return m, nil
		}
		if m, err := resolveCoordMove(b, line); err == nil {
			return m, nil
		}
		fmt.Printf("illegal move %q, try again\n", line)
	}
}

// resolveCoordMove parses str as pure coordinate notation and matches it
// against b's legal moves, filling in the Tag/Capture/Piece fields that
// board.ParseMove alone leaves unresolved.
func resolveCoordMove(b *board.Board, str string) (board.Move, error) {
	want, err := board.ParseMove(str)
	if err != nil {
		return board.Move{}, err
	}
	for _, m := range b.LegalMoves() {
		if m.Equals(want) {
			return m, nil
		}
	}
	return board.Move{}, fmt.Errorf("illegal move: %q", str)
}

const perftFixturePath = "cmd/evochess/testdata/perft.toml"

const (
	// testDepth bounds the perft depth run by -test, a quick sanity check
	// rather than the exhaustive -perft suite.
	testDepth = 3
	// perftDepth is high enough to exhaust every fixture's recorded depths.
	perftDepth = 6
	// speedDepth is the fixed depth -speed times for a throughput figure.
	speedDepth = 4
)

type perftFixture struct {
	Name   string   `toml:"name"`
	FEN    string   `toml:"fen"`
	Depths []uint64 `toml:"depths"`
}

type perftSuite struct {
	Positions []perftFixture `toml:"positions"`
}

func loadPerftSuite() (*perftSuite, error) {
	var s perftSuite
	if _, err := toml.DecodeFile(perftFixturePath, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func fixtureBoard(f perftFixture) (board.Board, error) {
	if f.FEN == "" {
		return board.NewBoard(), nil
	}
	return board.FromFEN(f.FEN)
}

// runSuite checks every fixture's recorded node counts up to maxDepth
// plies, additionally replaying a few concrete end-to-end scenarios when
// withScenarios is set (the -test mode's fast sanity check, as opposed to
// -perft's exhaustive run).
func runSuite(maxDepth int, withScenarios bool) error {
	suite, err := loadPerftSuite()
	if err != nil {
		return err
	}

	ok := true
	for _, pos := range suite.Positions {
		b, err := fixtureBoard(pos)
		if err != nil {
			return fmt.Errorf("perft fixture %q: %w", pos.Name, err)
		}
		for i, want := range pos.Depths {
			depth := i + 1
			if depth > maxDepth {
				break
			}
			got := board.Perft(b, depth)
			if got != want {
				ok = false
				fmt.Printf("FAIL %s depth=%d: got %d, want %d\n", pos.Name, depth, got, want)
				continue
			}
			fmt.Printf("ok   %s depth=%d: %d\n", pos.Name, depth, got)
		}
	}

	if withScenarios {
		if err := runScenarios(); err != nil {
			ok = false
			fmt.Println("FAIL scenarios:", err)
		} else {
			fmt.Println("ok   scenarios")
		}
	}

	if !ok {
		return fmt.Errorf("suite failed")
	}
	return nil
}

func runSpeed() error {
	suite, err := loadPerftSuite()
	if err != nil {
		return err
	}
	for _, pos := range suite.Positions {
		b, err := fixtureBoard(pos)
		if err != nil {
			return fmt.Errorf("perft fixture %q: %w", pos.Name, err)
		}
		depth := speedDepth
		if depth > len(pos.Depths) {
			depth = len(pos.Depths)
		}
		start := time.Now()
		nodes := board.Perft(b, depth)
		elapsed := time.Since(start)
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Printf("%-10s depth=%d nodes=%-10d time=%-10v nps=%.0f\n", pos.Name, depth, nodes, elapsed, nps)
	}
	return nil
}

// runScenarios replays a few concrete end-to-end scenarios that a perft
// fixture table can't express: checkmate detection with its SAN suffix,
// and en-passant target suppression.
func runScenarios() error {
	if err := checkFoolsMate(); err != nil {
		return err
	}
	if err := checkScholarsMate(); err != nil {
		return err
	}
	if err := checkEnPassantAvailability(); err != nil {
		return err
	}
	return nil
}

func checkFoolsMate() error {
	b := board.NewBoard()
	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	for i, uci := range moves {
		m, err := resolveCoordMove(&b, uci)
		if err != nil {
			return fmt.Errorf("fool's mate: %w", err)
		}
		if i == len(moves)-1 {
			if san := board.SAN(&b, m); san != "Qh4#" {
				return fmt.Errorf("fool's mate: last move SAN = %q, want \"Qh4#\"", san)
			}
		}
		b = b.Apply(m)
	}
	if r := b.Result(); r.Kind != board.Checkmate || r.Winner != board.Black {
		return fmt.Errorf("fool's mate: result = %+v, want checkmate for black", r)
	}
	return nil
}

func checkScholarsMate() error {
	b := board.NewBoard()
	moves := []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"}
	for i, uci := range moves {
		m, err := resolveCoordMove(&b, uci)
		if err != nil {
			return fmt.Errorf("scholar's mate: %w", err)
		}
		if i == len(moves)-1 {
			if san := board.SAN(&b, m); san != "Qxf7#" {
				return fmt.Errorf("scholar's mate: last move SAN = %q, want \"Qxf7#\"", san)
			}
		}
		b = b.Apply(m)
	}
	if r := b.Result(); r.Kind != board.Checkmate || r.Winner != board.White {
		return fmt.Errorf("scholar's mate: result = %+v, want checkmate for white", r)
	}
	return nil
}

func checkEnPassantAvailability() error {
	b := board.NewBoard()
	for _, uci := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		m, err := resolveCoordMove(&b, uci)
		if err != nil {
			return fmt.Errorf("en-passant availability: %w", err)
		}
		b = b.Apply(m)
	}
	fields := strings.Fields(b.FEN())
	if len(fields) < 4 || fields[3] != "d6" {
		return fmt.Errorf("en-passant availability: FEN ep field = %q, want \"d6\"", fenField(fields, 3))
	}

	b = board.NewBoard()
	for _, uci := range []string{"e2e4", "a7a6", "e4e5", "g7g5"} {
		m, err := resolveCoordMove(&b, uci)
		if err != nil {
			return fmt.Errorf("en-passant suppression: %w", err)
		}
		b = b.Apply(m)
	}
	fields = strings.Fields(b.FEN())
	if len(fields) >= 4 && fields[3] != "-" {
		return fmt.Errorf("en-passant suppression: FEN ep field = %q, want \"-\"", fenField(fields, 3))
	}
	return nil
}

func fenField(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
