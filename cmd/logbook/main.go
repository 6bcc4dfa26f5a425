package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/client"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
)

const usage = `usage: logbook [-api URL] <command> [flags]

commands:
  login      -email -password      sign in and remember the token
  logout                           end the remembered session
  trips      -difficulty -sort     list trips
  stats      -difficulty -sort     totals and per-day series
  mountains  -q                    search the peak gazetteer
  add        -mountain -date ...   log a trip (-id to edit one)
  delete     -id                   delete a trip
`

type cli struct {
	session   *client.Session
	out       io.Writer
	tokenFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "logbook:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("logbook", flag.ContinueOnError)
	global.SetOutput(out)
	global.Usage = func() { fmt.Fprint(out, usage) }
	apiURL := global.String("api", envOr("LOGBOOK_API", client.DefaultBaseURL), "API base URL")
	tokenFile := global.String("token-file", defaultTokenFile(), "where the session token is kept")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	c := &cli{
		session:   client.NewSession(client.New(*apiURL, nil), nil),
		out:       out,
		tokenFile: *tokenFile,
	}
	defer c.session.Close()

	if token := envOr("LOGBOOK_TOKEN", ""); token != "" {
		c.session.Resume(token)
	} else if data, err := os.ReadFile(c.tokenFile); err == nil {
		c.session.Resume(string(data))
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	var err error
	switch cmd {
	case "login":
		err = c.login(ctx, rest)
	case "logout":
		err = c.logout(ctx)
	case "trips":
		err = c.trips(ctx, rest)
	case "stats":
		err = c.stats(ctx, rest)
	case "mountains":
		err = c.mountains(ctx, rest)
	case "add":
		err = c.add(ctx, rest)
	case "delete":
		err = c.delete(ctx, rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotLoggedIn) {
		_ = os.Remove(c.tokenFile)
		return fmt.Errorf("%w, run `logbook login` first", err)
	}
	return err
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", envOr("LOGBOOK_PASSWORD", ""), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := c.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(c.tokenFile, []byte(c.session.Token()), 0o600); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	err := c.session.Logout(ctx)
	_ = os.Remove(c.tokenFile)
	if err != nil && !errors.Is(err, client.ErrNotLoggedIn) {
		return err
	}
	fmt.Fprintln(c.out, "Logged out")
	return nil
}

func (c *cli) trips(ctx context.Context, args []string) error {
	fs := c.flags("trips")
	difficulty, order := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.Load(ctx); err != nil {
		return err
	}

	points, _ := c.session.MapPoints(ctx, *difficulty, domain.ParseSortOrder(*order))
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tMOUNTAIN\tDIFFICULTY\tDISTANCE\tELEVATION\tLOCATION")
	for _, p := range points {
		t := p.Trip
		place := fmt.Sprintf("%.4f,%.4f", p.Coordinates.Lat, p.Coordinates.Lng)
		if !p.Resolved {
			place = "unresolved"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("2006-01-02"), t.Title, orDash(t.DifficultyText()),
			formatKm(t.Distance), formatMeters(t.ElevationGain), place)
	}
	return tw.Flush()
}

func (c *cli) stats(ctx context.Context, args []string) error {
	fs := c.flags("stats")
	difficulty, order := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.Load(ctx); err != nil {
		return err
	}

	overview := c.session.Stats(*difficulty, domain.ParseSortOrder(*order))
	s := overview.Summary
	fmt.Fprintf(c.out, "Trips: %d\nTotal distance: %.2f km\nTotal elevation: %.0f m\nAverage difficulty: %s\n",
		s.TripCount, s.TotalDistance, s.TotalElevationGain, s.AverageDifficulty)
	if len(overview.Daily) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nDAY\tDISTANCE\tELEVATION\tDIFFICULTY")
	for _, d := range overview.Daily {
		fmt.Fprintf(tw, "%s\t%.2f\t%.0f\t%.2f\n", d.Date, d.Distance, d.ElevationGain, d.DifficultyScore)
	}
	return tw.Flush()
}

func (c *cli) mountains(ctx context.Context, args []string) error {
	fs := c.flags("mountains")
	query := fs.String("q", "", "name or alias fragment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, peak := range c.session.Suggest(ctx, *query) {
		fmt.Fprintf(c.out, "%s (%.4f, %.4f)\n", peak.Name, peak.Coordinates.Lat, peak.Coordinates.Lng)
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := c.flags("add")
	editID := fs.String("id", "", "trip to edit instead of creating a new one")
	mountain := fs.String("mountain", "", "peak name from the gazetteer")
	date := fs.String("date", time.Now().Format("2006-01-02"), "trip date, YYYY-MM-DD")
	distance := fs.String("distance", "", "distance in km")
	elevation := fs.String("elevation", "", "elevation gain in m")
	difficulty := fs.String("difficulty", "", "easy, medium or hard")
	notes := fs.String("notes", "", "free text")
	image := fs.String("image", "", "path to a JPG, PNG or WEBP photo")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := client.TripDraft{
		Mountain:   *mountain,
		Date:       *date,
		Difficulty: *difficulty,
		Notes:      *notes,
	}
	var err error
	if draft.Distance, err = optionalFloat("distance", *distance); err != nil {
		return err
	}
	if draft.ElevationGain, err = optionalFloat("elevation", *elevation); err != nil {
		return err
	}
	if *editID != "" {
		id, err := uuid.Parse(*editID)
		if err != nil {
			return fmt.Errorf("invalid trip id %q", *editID)
		}
		draft.EditID = &id
	}
	if *image != "" {
		data, err := os.ReadFile(*image)
		if err != nil {
			return err
		}
		draft.Image = &client.ImageFile{Name: filepath.Base(*image), Data: data}
	}

	trip, err := c.session.SubmitTrip(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s on %s (%s)\n", trip.Title, trip.Date.Format("2006-01-02"), trip.ID)
	if trip.Weather != nil {
		fmt.Fprintf(c.out, "Weather: %s\n", *trip.Weather)
	}
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := c.flags("delete")
	rawID := fs.String("id", "", "trip id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := uuid.Parse(*rawID)
	if err != nil {
		return fmt.Errorf("invalid trip id %q", *rawID)
	}
	if err := c.session.DeleteTrip(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Trip deleted")
	return nil
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func filterFlags(fs *flag.FlagSet) (*string, *string) {
	difficulty := fs.String("difficulty", domain.DifficultyAll, "all, easy, medium or hard")
	order := fs.String("sort", string(domain.SortOrderDesc), "asc or desc by date")
	return difficulty, order
}

func optionalFloat(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

func formatKm(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " km"
}

func formatMeters(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 0, 64) + " m"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mountain-logbook", "token")
}
