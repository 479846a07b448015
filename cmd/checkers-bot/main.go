package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mossbit/garden-checkers-bot/internal/adapter/checkerspresenter"
	appcfg "github.com/mossbit/garden-checkers-bot/internal/config"
	"github.com/mossbit/garden-checkers-bot/internal/gamebuilder"
	"github.com/mossbit/garden-checkers-bot/internal/msgcat"
	"github.com/mossbit/garden-checkers-bot/internal/obslog"
	"github.com/mossbit/garden-checkers-bot/internal/pvp"
	"github.com/mossbit/garden-checkers-bot/internal/pvpchan"
	"github.com/mossbit/garden-checkers-bot/internal/pvpcheckers"
	"github.com/mossbit/garden-checkers-bot/internal/relay"
	svccheckers "github.com/mossbit/garden-checkers-bot/internal/service/checkers"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}

	client := relay.NewClient(cfg.RelayBaseURL, relay.WithHeaderProvider(headers))

	ws := relay.NewWebSocket(cfg.RelayWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state relay.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})

	pvpMgr := pvp.NewManager()

	pvpGameMgr, err := pvpcheckers.NewManager(cfg.RedisURL)
	if err != nil {
		log.Fatalf("pvp manager init error: %v", err)
	}
	var pvpRepo *pvpcheckers.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pvpRepo, err = pvpcheckers.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("pvp repo init error: %v", err)
		}
		pvpGameMgr.AttachRepository(pvpRepo)
	} else {
		logger.Warn("DATABASE_URL not set, finished pvp games are not archived")
	}

	addr, password, db, err := pvpcheckers.ParseRedisURLForChan(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	chanRdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	chanMgr := pvpchan.NewManager(chanRdb, pvpGameMgr)

	deps, err := gamebuilder.New(cfg, logger)
	if err != nil {
		log.Fatalf("checkers init error: %v", err)
	}

	catalog, err := msgcat.New(strings.TrimSpace(os.Getenv("MESSAGES_DIR")))
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	// Outbound transport: http (default), ws, or auto with fallback.
	egress := relay.NewEgress(strings.ToLower(strings.TrimSpace(os.Getenv("RELAY_EGRESS"))), false, client, ws, logger)

	presenter := checkerspresenter.NewPresenter(
		func(room, message string) error { return egress.SendText(context.Background(), room, message) },
		func(room, imageBase64 string) error { return egress.SendImage(context.Background(), room, imageBase64) },
	)
	formatter := checkerspresenter.NewFormatter(prefixProvider{prefix: cfg.BotPrefix}, catalog)

	bot := &bot{
		cfg:       cfg,
		egress:    egress,
		pvpMgr:    pvpMgr,
		games:     pvpGameMgr,
		channels:  chanMgr,
		checkers:  deps.Service,
		presenter: presenter,
		formatter: formatter,
		logger:    logger,
	}

	ws.OnMessage(func(msg *relay.Message) {
		if msg == nil || msg.Msg == "" {
			return
		}
		if len(cfg.AllowedRooms) > 0 && !roomAllowed(cfg.AllowedRooms, msg.Room) {
			return
		}
		if !strings.HasPrefix(strings.TrimSpace(msg.Msg), cfg.BotPrefix) {
			return
		}
		// Keep the WS read loop free
		go bot.handleCommand(msg)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		log.Fatalf("ws connect error: %v", err)
	}
	cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = ws.Close(context.Background())
	_ = pvpGameMgr.Close()
	if pvpRepo != nil {
		_ = pvpRepo.Close()
	}
	_ = chanRdb.Close()
}

type bot struct {
	cfg       *appcfg.AppConfig
	egress    relay.Egress
	pvpMgr    *pvp.Manager
	games     *pvpcheckers.Manager
	channels  *pvpchan.Manager
	checkers  *svccheckers.Service
	presenter *checkerspresenter.Presenter
	formatter *checkerspresenter.Formatter
	logger    *zap.Logger
}

func (b *bot) reply(room, text string) {
	if err := b.egress.SendText(context.Background(), room, text); err != nil {
		b.logger.Warn("send_failed", zap.String("room", room), zap.Error(err))
	}
}

func (b *bot) handleCommand(msg *relay.Message) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(msg.Msg), b.cfg.BotPrefix))
	if raw == "" {
		b.reply(msg.Room, b.helpText())
		return
	}
	parts := strings.Fields(raw)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		b.reply(msg.Room, b.helpText())
	case "pvp":
		b.handlePvpCommand(msg, args)
	case "checkers":
		b.handleCheckersCommand(msg, args)
	default:
		b.reply(msg.Room, "Unknown command. Try 'help'.")
	}
}

func (b *bot) helpText() string {
	p := b.cfg.BotPrefix
	return strings.Join([]string{
		"🔴 Garden Checkers Bot",
		"",
		"• " + p + "pvp @user [red|black|random]",
		"  Challenge someone in this room (auto-accepted)",
		"• " + p + "pvp make | join <code> | list | status | resign | <move>",
		"  Cross-room channels and in-game commands",
		"• " + p + "checkers start [easy|medium|hard]",
		"  Solo game vs the bot / then: <from> <to>, status, resign, history, game, profile",
	}, "\n")
}

func userIDFromMessage(msg *relay.Message) string {
	if msg.JSON != nil && msg.JSON.UserID != "" {
		return msg.JSON.UserID
	}
	if msg.Sender != nil {
		return strings.TrimSpace(*msg.Sender)
	}
	return ""
}

func senderName(msg *relay.Message) string {
	if msg.Sender != nil && strings.TrimSpace(*msg.Sender) != "" {
		return strings.TrimSpace(*msg.Sender)
	}
	if msg.JSON != nil && strings.TrimSpace(msg.JSON.UserID) != "" {
		return strings.TrimSpace(msg.JSON.UserID)
	}
	return "player"
}

func sanitizeUserArg(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

func roomAllowed(allowed []string, room string) bool {
	for _, r := range allowed {
		if r == room {
			return true
		}
	}
	return false
}

// showPvpBoard renders a game to its origin room and, when different, the
// resolve room.
func (b *bot) showPvpBoard(g *pvpcheckers.Game, text string) {
	dto, err := b.games.ToDTO(context.Background(), g)
	if err != nil {
		b.reply(g.OriginRoom, "Couldn't render the board.")
		return
	}
	_ = b.presenter.Board(g.OriginRoom, text, dto)
	if g.ResolveRoom != "" && g.ResolveRoom != g.OriginRoom {
		_ = b.presenter.Board(g.ResolveRoom, text, dto)
	}
}

func (b *bot) handlePvpCommand(msg *relay.Message, args []string) {
	if len(args) < 1 {
		b.reply(msg.Room, "Usage: "+b.cfg.BotPrefix+"pvp @user [red|black|random] | pvp make | pvp join <code> | pvp list | pvp status | pvp resign | pvp <move>")
		return
	}
	user := userIDFromMessage(msg)

	if strings.HasPrefix(args[0], "@") {
		if user == "" {
			b.reply(msg.Room, "Cannot identify the challenger.")
			return
		}
		target := sanitizeUserArg(args[0])
		if target == "" {
			b.reply(msg.Room, "Invalid target user.")
			return
		}
		side := pvp.SideRandom
		if len(args) >= 2 {
			side = pvp.ParseSideChoice(args[1])
		}
		ch, err := b.pvpMgr.CreateChallenge(msg.Room, user, target, side)
		if err != nil {
			b.reply(msg.Room, "PvP error: "+err.Error())
			return
		}
		g, gerr := b.games.CreateGameFromChallenge(context.Background(), ch.OriginRoom, ch.ResolveRoom, ch.ChallengerID, senderName(msg), ch.TargetID, target, string(ch.Side))
		if gerr != nil {
			b.reply(msg.Room, "PvP game error: "+gerr.Error())
			return
		}
		b.showPvpBoard(g, b.formatter.PvpStart(g.RedName, g.BlackName))
		return
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "make":
		side := pvpchan.SideRandom
		if len(args) >= 2 {
			side = pvpchan.ParseSideChoice(args[1])
		}
		res, err := b.channels.Make(context.Background(), msg.Room, user, senderName(msg), side)
		if err != nil {
			b.reply(msg.Room, "Channel error: "+err.Error())
			return
		}
		b.reply(msg.Room, fmt.Sprintf("📡 Channel %s is open. Anyone can join with `%spvp join %s`.", res.Code, b.cfg.BotPrefix, res.Code))
		return
	case "join":
		if len(args) < 2 {
			b.reply(msg.Room, "Usage: "+b.cfg.BotPrefix+"pvp join <code> [red|black|random]")
			return
		}
		pref := pvpchan.SideRandom
		if len(args) >= 3 {
			pref = pvpchan.ParseSideChoice(args[2])
		}
		res, err := b.channels.Join(context.Background(), msg.Room, strings.ToUpper(args[1]), user, senderName(msg), pref)
		if err != nil {
			b.reply(msg.Room, "Join error: "+err.Error())
			return
		}
		if !res.Started {
			b.reply(msg.Room, "Joined. Waiting for an opponent.")
			return
		}
		g, lerr := b.games.LoadGame(context.Background(), res.GameID)
		if lerr != nil || g == nil {
			b.reply(msg.Room, "The match started but the board could not be loaded.")
			return
		}
		b.showPvpBoard(g, b.formatter.PvpStart(g.RedName, g.BlackName))
		return
	case "list":
		lobbies, err := b.channels.ListLobby(context.Background())
		if err != nil {
			b.reply(msg.Room, "Couldn't list open channels.")
			return
		}
		if len(lobbies) == 0 {
			b.reply(msg.Room, "No open channels right now.")
			return
		}
		var sb strings.Builder
		sb.WriteString("📡 Open channels\n")
		for _, meta := range lobbies {
			sb.WriteString(fmt.Sprintf("• %s by %s\n", meta.ID, meta.CreatorName))
		}
		b.reply(msg.Room, strings.TrimRight(sb.String(), "\n"))
		return
	case "status":
		g, err := b.games.GetActiveGameByUser(context.Background(), user)
		if err != nil || g == nil {
			b.reply(msg.Room, "You have no active PvP match.")
			return
		}
		b.showPvpBoard(g, "")
		return
	case "resign":
		g, _, err := b.games.ResignByRoom(context.Background(), user, msg.Room)
		if err != nil || g == nil {
			b.reply(msg.Room, "Resignation failed.")
			return
		}
		b.showPvpBoard(g, b.formatter.PvpResigned(g.NameOfUser(user), g.WinnerName()))
		return
	default:
		moveStr := strings.Join(args, " ")
		g, notice, err := b.games.PlayMoveByRoom(context.Background(), user, msg.Room, moveStr)
		if err != nil || g == nil {
			b.reply(msg.Room, "Move failed.")
			return
		}
		if g.Status != pvpcheckers.StatusActive {
			b.showPvpBoard(g, b.formatter.PvpFinished(g.WinnerName(), g.FinishMethod()))
			return
		}
		if notice != "" && !strings.Contains(notice, ":") {
			// Rejection notices go back to the sender's room only, no board
			b.reply(msg.Room, notice)
			return
		}
		b.showPvpBoard(g, "")
		return
	}
}

func (b *bot) handleCheckersCommand(msg *relay.Message, args []string) {
	meta := svccheckers.SessionMeta{
		SessionID: sessionIDFor(msg),
		Room:      msg.Room,
		Sender:    senderName(msg),
	}
	if len(args) == 0 {
		b.reply(msg.Room, b.formatter.Help())
		return
	}
	sub := strings.ToLower(strings.TrimSpace(args[0]))
	ctx := context.Background()

	switch sub {
	case "start":
		difficulty := ""
		if len(args) >= 2 {
			difficulty = args[1]
		}
		state, err := b.checkers.StartSession(ctx, meta, difficulty)
		resumed := false
		if errors.Is(err, svccheckers.ErrSessionInProgress) {
			if st, sErr := b.checkers.Status(ctx, meta); sErr == nil {
				state, resumed, err = st, true, nil
			}
		}
		if err != nil {
			b.reply(msg.Room, "Couldn't start: "+err.Error())
			return
		}
		dto := checkerspresenter.ToDTOState(state)
		_ = b.presenter.Board(msg.Room, b.formatter.Start(dto, resumed), dto)
	case "status", "board":
		state, err := b.checkers.Status(ctx, meta)
		if err != nil {
			b.reply(msg.Room, b.formatter.NoSession())
			return
		}
		dto := checkerspresenter.ToDTOState(state)
		_ = b.presenter.Board(msg.Room, b.formatter.Status(dto), dto)
	case "moves":
		if len(args) < 2 {
			b.reply(msg.Room, "Usage: "+b.cfg.BotPrefix+"checkers moves <square>")
			return
		}
		squares, err := b.checkers.Destinations(ctx, meta, args[1])
		if err != nil {
			b.reply(msg.Room, b.formatter.NoSession())
			return
		}
		b.reply(msg.Room, b.formatter.Destinations(strings.ToLower(args[1]), squares))
	case "resign":
		state, err := b.checkers.Resign(ctx, meta)
		if err != nil {
			b.reply(msg.Room, b.formatter.NoSession())
			return
		}
		dto := checkerspresenter.ToDTOState(state)
		_ = b.presenter.Board(msg.Room, b.formatter.Resign(dto), dto)
	case "history":
		limit := b.cfg.CheckersHistoryLimit
		if len(args) >= 2 {
			if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
				limit = n
			}
		}
		games, err := b.checkers.History(ctx, meta, limit)
		if err != nil {
			b.reply(msg.Room, "Couldn't load your history: "+err.Error())
			return
		}
		if len(games) == 0 {
			b.reply(msg.Room, "No finished games yet. Play one with `"+b.cfg.BotPrefix+"checkers start`.")
			return
		}
		b.reply(msg.Room, b.formatter.History(checkerspresenter.ToDTOGames(games)))
	case "game":
		if len(args) < 2 {
			b.reply(msg.Room, "Usage: "+b.cfg.BotPrefix+"checkers game <ID>")
			return
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			b.reply(msg.Room, "Invalid game ID.")
			return
		}
		game, err := b.checkers.Game(ctx, meta, id)
		if err != nil {
			b.reply(msg.Room, "Couldn't load that game: "+err.Error())
			return
		}
		b.reply(msg.Room, b.formatter.Game(checkerspresenter.ToDTOGame(game)))
	case "profile":
		profile, err := b.checkers.Profile(ctx, meta)
		if err != nil {
			b.reply(msg.Room, "Couldn't load your profile: "+err.Error())
			return
		}
		b.reply(msg.Room, b.formatter.Profile(checkerspresenter.ToDTOProfile(profile)))
	case "difficulty":
		if len(args) < 2 {
			b.reply(msg.Room, "Usage: "+b.cfg.BotPrefix+"checkers difficulty <easy|medium|hard>")
			return
		}
		profile, err := b.checkers.UpdatePreferredDifficulty(ctx, meta, args[1])
		if err != nil {
			b.reply(msg.Room, "Couldn't update the difficulty: "+err.Error())
			return
		}
		b.reply(msg.Room, b.formatter.PreferredDifficultyUpdated(checkerspresenter.ToDTOProfile(profile)))
	default:
		// Treat everything else as a move, e.g. "e3 d4" or "e3-d4"
		moveInput := strings.Join(args, " ")
		summary, err := b.checkers.Play(ctx, meta, moveInput)
		if err != nil {
			b.reply(msg.Room, "Move failed: "+err.Error())
			return
		}
		dto := checkerspresenter.ToDTOMoveSummary(summary)
		_ = b.presenter.Board(msg.Room, b.formatter.Move(dto), dto.State)
	}
}

func sessionIDFor(msg *relay.Message) string {
	uid := userIDFromMessage(msg)
	if uid == "" {
		uid = senderName(msg)
	}
	return fmt.Sprintf("%s:%s", strings.TrimSpace(msg.Room), strings.TrimSpace(uid))
}

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }
