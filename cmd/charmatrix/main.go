package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/codegangsta/cli"
	"github.com/kevin-cantwell/charmatrix"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	app := cli.NewApp()
	app.Version = "0.1.0"
	app.Name = "charmatrix"
	app.Usage = "Renders images and animated gifs as character art."
	app.UsageText = "1) charmatrix [options] [file|url]\n" +
		/*      */ "   2) charmatrix [options] < [file]"
	app.Author = "Kevin Cantwell"
	app.Email = "kevin.cantwell@gmail.com"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML `FILE` with default settings. Flags override it.",
		},
		cli.IntFlag{
			Name:  "width,W",
			Usage: "Output `COLUMNS`. With no height the aspect ratio is kept.",
		},
		cli.IntFlag{
			Name:  "height,H",
			Usage: "Output `ROWS`. With no width the aspect ratio is kept.",
		},
		cli.Float64Flag{
			Name:  "scale",
			Usage: "Uniform `FACTOR` applied to the source size. Cannot be combined with width or height.",
		},
		cli.Float64Flag{
			Name:  "char-aspect",
			Usage: "Width/height `RATIO` of a terminal cell.",
			Value: 0.5,
		},
		cli.BoolFlag{
			Name:  "stretch",
			Usage: "Do not preserve the aspect ratio when only one of width or height is given.",
		},
		cli.StringFlag{
			Name:  "ramp,r",
			Usage: "Built-in glyph ramp: simple, detailed or braille.",
			Value: charmatrix.RampDetailed,
		},
		cli.StringFlag{
			Name:  "chars",
			Usage: "Custom ramp of `GLYPHS`, darkest first.",
		},
		cli.BoolFlag{
			Name:  "color",
			Usage: "Keep the source colors.",
		},
		cli.BoolFlag{
			Name:  "invert,i",
			Usage: "Inverts the brightness mapping.",
		},
		cli.Float64Flag{
			Name:  "gamma,g",
			Usage: "`GAMMA` = 1.0 gives the original image. GAMMA less than 1.0 darkens the image and GAMMA greater than 1.0 lightens it.",
			Value: 1.0,
		},
		cli.Float64Flag{
			Name:  "brightness,b",
			Usage: "`BRIGHTNESS` = 0 gives the original image. BRIGHTNESS = -100 gives solid black image. BRIGHTNESS = 100 gives solid white image.",
		},
		cli.Float64Flag{
			Name:  "contrast,c",
			Usage: "`CONTRAST` = 0 gives the original image. CONTRAST = -100 gives solid grey image. CONTRAST = 100 gives maximum contrast.",
		},
		cli.Float64Flag{
			Name:  "sharpen,s",
			Usage: "`SHARPEN` = 0 gives the original image. SHARPEN greater than 0 sharpens the image.",
		},
		cli.Float64Flag{
			Name:  "sigmoid-midpoint",
			Usage: "`MIDPOINT` of contrast that must be between 0 and 1.",
			Value: 0.5,
		},
		cli.Float64Flag{
			Name:  "sigmoid-factor",
			Usage: "`FACTOR` = 0 gives the original image. FACTOR greater than 0 increases contrast. FACTOR less than 0 decreases contrast.",
		},
		cli.BoolFlag{
			Name:  "play,p",
			Usage: "Plays the input in the terminal, the default for animations. q, ESC or CTRL-C to quit, p or space to pause.",
		},
		cli.BoolFlag{
			Name:  "keep-screen",
			Usage: "Leave the last frame on screen when playback ends.",
		},
		cli.StringFlag{
			Name:  "gif,o",
			Usage: "Write the character art as an animated gif to `FILE`.",
		},
		cli.StringFlag{
			Name:  "text,t",
			Usage: "Write every frame as text to `FILE`.",
		},
		cli.Float64Flag{
			Name:  "font-size",
			Usage: "Glyph `SIZE` in pixels for gif output.",
			Value: charmatrix.DefaultFontSize,
		},
		cli.StringFlag{
			Name:  "font",
			Usage: "TrueType `FILE` for gif output. Defaults to Go Mono.",
		},
		cli.StringFlag{
			Name:  "colors",
			Usage: "`BG,FG` hex colors for gif output, or white-on-black / black-on-white.",
		},
		cli.StringFlag{
			Name:  "size",
			Usage: "`W,H` pixel size of gif output. Use 0 to keep the aspect ratio of one side.",
		},
		cli.IntFlag{
			Name:  "fps",
			Usage: "Treat the input as a motion jpeg stream played at `FPS`.",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Debug logging.",
		},
	}
	app.Action = func(c *cli.Context) {
		log.SetOutput(os.Stderr)
		if c.Bool("verbose") {
			log.SetLevel(log.DebugLevel)
		}

		cfg := loadConfig(c)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		src := readSource(ctx, c)

		switch {
		case c.Bool("play"), playsByDefault(src, c.String("gif") != "" || c.String("text") != "", term.IsTerminal(int(os.Stdout.Fd()))):
			play(ctx, src, cfg)
		case c.String("gif") != "" || c.String("text") != "":
			anim, err := charmatrix.RasterizeAll(ctx, src, cfg.Render)
			if err != nil {
				exit(err.Error(), 1)
			}
			if path := c.String("text"); path != "" {
				writeFile(path, func(w io.Writer) error {
					return charmatrix.WriteText(ctx, w, anim)
				})
			}
			if path := c.String("gif"); path != "" {
				encodeGIF(ctx, path, anim, cfg.GIF)
			}
		default:
			anim, err := charmatrix.RasterizeAll(ctx, src, cfg.Render)
			if err != nil {
				exit(err.Error(), 1)
			}
			for _, line := range anim.Frames[0].DisplayLines() {
				fmt.Println(line)
			}
		}
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// playsByDefault reports whether an invocation without a mode flag should play
// the input. Animations play on a terminal; stills and redirected output get
// the first frame printed.
func playsByDefault(src *charmatrix.Source, toFile, tty bool) bool {
	return !toFile && tty && len(src.Frames) > 1
}

func loadConfig(c *cli.Context) charmatrix.Config {
	cfg := charmatrix.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = charmatrix.LoadConfig(path); err != nil {
			exit(err.Error(), 1)
		}
	}

	r := &cfg.Render
	if c.IsSet("width") {
		r.Width = c.Int("width")
	}
	if c.IsSet("height") {
		r.Height = c.Int("height")
	}
	if c.IsSet("scale") {
		r.Scale = c.Float64("scale")
	}
	if c.IsSet("char-aspect") {
		r.CharAspect = c.Float64("char-aspect")
	}
	if c.Bool("stretch") {
		r.PreserveAspect = false
	}
	if c.IsSet("ramp") {
		r.RampName = c.String("ramp")
	}
	if c.IsSet("chars") {
		r.CustomRamp = c.String("chars")
	}
	if c.Bool("color") {
		r.Colored = true
	}
	if c.Bool("invert") {
		r.Invert = true
	}
	if c.IsSet("gamma") {
		r.Adjust.Gamma = c.Float64("gamma")
	}
	if c.IsSet("brightness") {
		r.Adjust.Brightness = c.Float64("brightness")
	}
	if c.IsSet("contrast") {
		r.Adjust.Contrast = c.Float64("contrast")
	}
	if c.IsSet("sharpen") {
		r.Adjust.Sharpen = c.Float64("sharpen")
	}
	if c.IsSet("sigmoid-midpoint") || c.IsSet("sigmoid-factor") {
		r.Adjust.SigmoidMidpoint = c.Float64("sigmoid-midpoint")
		r.Adjust.SigmoidFactor = c.Float64("sigmoid-factor")
	}

	g := &cfg.GIF
	if c.IsSet("font-size") {
		g.FontSize = c.Float64("font-size")
	}
	if c.IsSet("font") {
		g.FontPath = c.String("font")
	}
	if c.IsSet("colors") {
		bg, fg, err := parseColors(c.String("colors"))
		if err != nil {
			exit(err.Error(), 1)
		}
		g.Background, g.Foreground = bg, fg
	}
	if c.IsSet("size") {
		w, h, err := parsePair(c.String("size"))
		if err != nil {
			exit("size option must be comma separated", 1)
		}
		g.Width, g.Height = w, h
	}

	if c.Bool("keep-screen") {
		cfg.Playback.ClearOnExit = false
	}

	if err := cfg.Validate(); err != nil {
		exit(err.Error(), 1)
	}
	return cfg
}

func parseColors(s string) (bg, fg charmatrix.RGB, err error) {
	switch s {
	case "white-on-black":
		return charmatrix.Black, charmatrix.White, nil
	case "black-on-white":
		return charmatrix.White, charmatrix.Black, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return bg, fg, fmt.Errorf("colors option must be BG,FG")
	}
	if bg, err = charmatrix.ParseHexColor(strings.TrimSpace(parts[0])); err != nil {
		return bg, fg, err
	}
	fg, err = charmatrix.ParseHexColor(strings.TrimSpace(parts[1]))
	return bg, fg, err
}

func parsePair(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want two values, got %q", s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	return a, b, err
}

func readSource(ctx context.Context, c *cli.Context) *charmatrix.Source {
	var reader io.Reader

	// Try to parse the args, if there are any, as a file or url
	if input := c.Args().First(); input != "" {
		if file, err := os.Open(input); err == nil {
			defer file.Close()
			reader = file
		} else {
			resp, err := http.Get(input)
			if err != nil {
				exit(err.Error(), 1)
			}
			defer resp.Body.Close()
			reader = resp.Body
		}
	} else {
		reader = os.Stdin
	}

	var (
		src *charmatrix.Source
		err error
	)
	if fps := c.Int("fps"); fps > 0 {
		src, err = charmatrix.DecodeMJPEG(ctx, reader, fps)
	} else {
		src, err = charmatrix.Decode(reader)
	}
	if err != nil {
		exit(err.Error(), 1)
	}
	return src
}

func play(ctx context.Context, src *charmatrix.Source, cfg charmatrix.Config) {
	xterm := charmatrix.NewXterm(os.Stdin, os.Stdout)
	dims, err := xterm.Size()
	if err != nil {
		exit(err.Error(), 1)
	}
	if err := xterm.Start(); err != nil {
		exit(err.Error(), 1)
	}

	manager := charmatrix.NewFrameManager(src, cfg.Render, dims, charmatrix.Margins{
		Width:  cfg.Playback.MarginWidth,
		Height: cfg.Playback.MarginHeight,
	})
	player := charmatrix.NewPlayer(xterm, manager, cfg.Playback)
	err = player.Play(ctx)
	xterm.Close()
	if err != nil && err != context.Canceled {
		exit(err.Error(), 1)
	}
}

func encodeGIF(ctx context.Context, path string, anim *charmatrix.Animation, opts charmatrix.GIFOptions) {
	bar := pb.StartNew(len(anim.Frames))
	enc, err := charmatrix.NewGIFEncoder(
		charmatrix.WithOptions(opts),
		charmatrix.WithProgress(func() { bar.Increment() }),
	)
	if err != nil {
		exit(err.Error(), 1)
	}
	writeFile(path, func(w io.Writer) error {
		defer bar.Finish()
		return enc.Encode(ctx, w, anim)
	})
}

func writeFile(path string, fn func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		exit(err.Error(), 1)
	}
	if err := fn(f); err != nil {
		f.Close()
		exit(err.Error(), 1)
	}
	if err := f.Close(); err != nil {
		exit(err.Error(), 1)
	}
}

func exit(msg string, code int) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
