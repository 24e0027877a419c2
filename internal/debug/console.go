package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Versifine/spawnpoint/internal/host"
	"github.com/Versifine/spawnpoint/internal/spawn"
	"github.com/Versifine/spawnpoint/internal/world"
)

// Scheduler runs fn on the server goroutine and waits for it.
type Scheduler interface {
	Call(ctx context.Context, fn func()) error
}

// Console reads admin commands line by line and runs each one on the
// server goroutine.
type Console struct {
	server    *host.Server
	engine    *spawn.Engine
	scheduler Scheduler
	reload    func() error

	in     io.Reader
	out    io.Writer
	prompt bool
}

// NewConsole reads from in and writes to out. reload re-reads the config
// and message files for the reload command and may be nil.
func NewConsole(server *host.Server, engine *spawn.Engine, scheduler Scheduler, reload func() error, in io.Reader, out io.Writer) *Console {
	c := &Console{
		server:    server,
		engine:    engine,
		scheduler: scheduler,
		reload:    reload,
		in:        in,
		out:       out,
	}
	if f, ok := in.(*os.File); ok {
		c.prompt = term.IsTerminal(int(f.Fd()))
	}
	return c
}

// Start blocks until ctx is done or the input ends.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.server == nil || c.engine == nil || c.scheduler == nil {
		return fmt.Errorf("console is not wired")
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprint(c.out, "[debug] console started, type help for commands\n")
	c.showPrompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read console input: %w", err)
			}
			return nil
		case line := <-lines:
			if err := c.scheduler.Call(ctx, func() { c.Execute(line) }); err != nil {
				return nil
			}
			c.showPrompt()
		}
	}
}

func (c *Console) showPrompt() {
	if c.prompt {
		fmt.Fprint(c.out, "> ")
	}
}

// Execute runs one command line. It must be called on the server
// goroutine.
func (c *Console) Execute(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "join":
		if !c.arity(parts, 2, "join <player>") {
			return
		}
		p, err := c.server.Join(parts[1])
		if err != nil {
			c.printf("%v", err)
			return
		}
		c.printf("%s joined at %s (first join: %t)", p.Name(), p.Location(), !p.HasPlayedBefore())
	case "quit":
		if !c.arity(parts, 2, "quit <player>") {
			return
		}
		c.report(c.server.Quit(parts[1]))
	case "players":
		for _, p := range c.server.Online() {
			c.printf("%s %s %s fall=%.2f", p.Name(), p.GameMode(), p.Location(), p.FallDistance())
		}
	case "move":
		c.handleMove(parts)
	case "look":
		c.handleLook(parts)
	case "fall":
		if !c.arity(parts, 2, "fall <player>") {
			return
		}
		res, err := c.server.Fall(parts[1])
		if err != nil {
			c.printf("%v", err)
			return
		}
		switch {
		case res.Rescued:
			c.printf("%s was rescued after %d ticks, now at %s", parts[1], res.Ticks, res.Final)
		case res.Landed:
			c.printf("%s landed after %d ticks at %s, damage=%d", parts[1], res.Ticks, res.Final, res.Damage)
		case res.Died:
			c.printf("%s fell out of the world after %d ticks", parts[1], res.Ticks)
		default:
			c.printf("%s is still falling after %d ticks at %s", parts[1], res.Ticks, res.Final)
		}
	case "spawn":
		if p, ok := c.player(parts, "spawn <player>"); ok {
			c.report(c.engine.Spawn(p))
		}
	case "setspawn":
		if p, ok := c.player(parts, "setspawn <player>"); ok {
			c.report(c.engine.SetSpawn(p))
		}
	case "perm":
		if len(parts) != 3 && len(parts) != 4 {
			c.printf("usage: perm <player> <node> [on|off]")
			return
		}
		value := len(parts) == 3 || parts[3] == "on" || parts[3] == "true"
		c.report(c.server.SetPermission(parts[1], parts[2], value))
	case "gamemode":
		if !c.arity(parts, 3, "gamemode <player> <mode>") {
			return
		}
		c.report(c.server.SetGameMode(parts[1], parts[2]))
	case "hide", "show":
		if !c.arity(parts, 3, parts[0]+" <viewer> <target>") {
			return
		}
		c.report(c.server.SetHidden(parts[1], parts[2], parts[0] == "hide"))
	case "block":
		c.handleBlock(parts)
	case "worlds":
		for _, name := range c.server.Worlds().Names() {
			w, _ := c.server.Worlds().Lookup(name)
			c.printf("%s dimension=%s minY=%d", name, w.Dimension(), w.MinHeight())
		}
	case "unload":
		if !c.arity(parts, 2, "unload <world>") {
			return
		}
		c.report(c.server.UnloadWorld(parts[1]))
	case "load":
		if !c.arity(parts, 2, "load <world>") {
			return
		}
		c.report(c.server.LoadWorld(parts[1], nil))
	case "spawnpoint":
		if p, ok := c.engine.Store().Get(); ok {
			c.printf("spawn point: %s", p.Location())
		} else {
			c.printf("spawn point: none")
		}
	case "reload":
		if err := c.engine.Reload(c, c.reload); err != nil {
			c.printf("%v", err)
		}
	default:
		c.printf("unknown command: %s", parts[0])
	}
}

func (c *Console) handleMove(parts []string) {
	if len(parts) != 5 && len(parts) != 6 {
		c.printf("usage: move <player> <x> <y> <z> [world]")
		return
	}
	p, ok := c.server.PlayerByName(parts[1])
	if !ok {
		c.printf("unknown player: %s", parts[1])
		return
	}
	x, err1 := strconv.ParseFloat(parts[2], 64)
	y, err2 := strconv.ParseFloat(parts[3], 64)
	z, err3 := strconv.ParseFloat(parts[4], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		c.printf("invalid move args")
		return
	}
	to := p.Location()
	to.X, to.Y, to.Z = x, y, z
	if len(parts) == 6 {
		to.World = parts[5]
	}
	c.report(c.server.Move(p.Name(), to))
}

// handleLook turns a player to face a point.
func (c *Console) handleLook(parts []string) {
	if len(parts) != 5 {
		c.printf("usage: look <player> <x> <y> <z>")
		return
	}
	p, ok := c.server.PlayerByName(parts[1])
	if !ok {
		c.printf("unknown player: %s", parts[1])
		return
	}
	x, err1 := strconv.ParseFloat(parts[2], 64)
	y, err2 := strconv.ParseFloat(parts[3], 64)
	z, err3 := strconv.ParseFloat(parts[4], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		c.printf("invalid look args")
		return
	}
	yaw, pitch := lookAt(p.Location(), x, y, z)
	c.report(c.server.Move(p.Name(), p.Location().WithRotation(yaw, pitch)))
}

func (c *Console) handleBlock(parts []string) {
	if len(parts) != 5 {
		c.printf("usage: block <world> <x> <y> <z>")
		return
	}
	w, ok := c.server.Worlds().Lookup(parts[1])
	if !ok {
		c.printf("unknown world: %s", parts[1])
		return
	}
	x, err1 := strconv.Atoi(parts[2])
	y, err2 := strconv.Atoi(parts[3])
	z, err3 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil || err3 != nil {
		c.printf("invalid block args")
		return
	}
	stateID, ok := w.Blocks().GetBlockState(x, y, z)
	if !ok {
		c.printf("block (%d,%d,%d): unloaded", x, y, z)
		return
	}
	name, _ := w.Blocks().GetBlockNameByStateID(stateID)
	c.printf("block (%d,%d,%d): state_id=%d name=%q material=%s", x, y, z, stateID, name, w.MaterialAt(x, y, z))
}

func (c *Console) player(parts []string, usage string) (*host.Player, bool) {
	if !c.arity(parts, 2, usage) {
		return nil, false
	}
	p, ok := c.server.PlayerByName(parts[1])
	if !ok {
		c.printf("unknown player: %s", parts[1])
	}
	return p, ok
}

func (c *Console) arity(parts []string, n int, usage string) bool {
	if len(parts) != n {
		c.printf("usage: %s", usage)
		return false
	}
	return true
}

func (c *Console) report(err error) {
	if err != nil {
		c.printf("%v", err)
		return
	}
	c.printf("ok")
}

// Name and SendMessage let the console receive player messages.
func (c *Console) Name() string { return "CONSOLE" }

func (c *Console) SendMessage(text string) {
	c.printf("%s", text)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, "[debug] "+format+"\n", args...)
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] commands:\n")
	fmt.Fprint(c.out, "  join <player> | quit <player> | players\n")
	fmt.Fprint(c.out, "  move <player> <x> <y> <z> [world]\n")
	fmt.Fprint(c.out, "  look <player> <x> <y> <z>\n")
	fmt.Fprint(c.out, "  fall <player>\n")
	fmt.Fprint(c.out, "  spawn <player> | setspawn <player> | spawnpoint\n")
	fmt.Fprint(c.out, "  perm <player> <node> [on|off]\n")
	fmt.Fprint(c.out, "  gamemode <player> <mode>\n")
	fmt.Fprint(c.out, "  hide <viewer> <target> | show <viewer> <target>\n")
	fmt.Fprint(c.out, "  block <world> <x> <y> <z>\n")
	fmt.Fprint(c.out, "  worlds | load <world> | unload <world>\n")
	fmt.Fprint(c.out, "  reload\n")
	fmt.Fprint(c.out, "  help\n")
}

func lookAt(self world.Location, x, y, z float64) (float32, float32) {
	dx := x - self.X
	dy := y - self.Y
	dz := z - self.Z

	yaw := float32(math.Atan2(-dx, dz) * 180.0 / math.Pi)
	horizontal := math.Sqrt(dx*dx + dz*dz)
	pitch := float32(-math.Atan2(dy, horizontal) * 180.0 / math.Pi)
	return normalizeYaw(yaw), clampPitch(pitch)
}

func normalizeYaw(yaw float32) float32 {
	for yaw <= -180 {
		yaw += 360
	}
	for yaw > 180 {
		yaw -= 360
	}
	return yaw
}

func clampPitch(pitch float32) float32 {
	if pitch < -90 {
		return -90
	}
	if pitch > 90 {
		return 90
	}
	return pitch
}
