package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"pos-analytics/analytics"
	"pos-analytics/config"
	"pos-analytics/dashboard"
	"pos-analytics/logging"
	"pos-analytics/models"
	"pos-analytics/services"
)

const loadTimeout = 30 * time.Second

const helpText = `POS analytics

/login <password> - sign in as staff
/logout
/range today|yesterday|week|month|year
/range 2026-01-01 2026-01-31
/overview /sales /inventory /staff /finance /customers
/refresh on|off - live overview
/stock <item_id> <delta> [restock|adjustment|usage]
/place <invoice_id> - send an invoice to the kitchen
/invoice <invoice_id> <item_id> <qty> - edit an open invoice
/order <order_id>
/edit <order_id> <item_id> <qty> - before the kitchen has it
/status <order_id> <status>
/note <order_id> <reason> - change request after the kitchen has it
/grant <tg_user_id> <employee_id> - admin only`

// chatState is what the bot remembers about one Telegram user.
type chatState struct {
	chatID      int64
	session     *models.Session
	rng         rangeChoice
	stopRefresh context.CancelFunc
	// refreshGen counts /refresh on; lastSeq belongs to that generation.
	refreshGen uint64
	lastSeq    uint64
}

// accept reports whether result seq of refresher gen may be published and
// records it. Results of a stopped or replaced refresher are dropped.
func (st *chatState) accept(gen, seq uint64) bool {
	if st.stopRefresh == nil || gen != st.refreshGen || seq <= st.lastSeq {
		return false
	}
	st.lastSeq = seq
	return true
}

type Bot struct {
	api    *tgbotapi.BotAPI
	cfg    *config.Config
	dash   *dashboard.Dashboard
	render renderer
	logger zerolog.Logger

	ctx context.Context

	chats   map[int64]*chatState
	chatsMu sync.RWMutex
}

func New(cfg *config.Config, dash *dashboard.Dashboard) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		cfg:    cfg,
		dash:   dash,
		render: renderer{currency: cfg.Report.Currency, loc: dash.Options().Location},
		logger: logging.New("bot"),
		ctx:    context.Background(),
		chats:  make(map[int64]*chatState),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.SetMyCommandsConfig{
		Commands: []tgbotapi.BotCommand{
			{Command: "start", Description: "Help"},
			{Command: "login", Description: "Sign in"},
			{Command: "overview", Description: "Today at a glance"},
			{Command: "sales", Description: "Sales report"},
			{Command: "inventory", Description: "Stock and waste"},
			{Command: "staff", Description: "Employee performance"},
			{Command: "finance", Description: "Profit and loss"},
			{Command: "customers", Description: "Feedback"},
			{Command: "range", Description: "Change date range"},
			{Command: "refresh", Description: "Live overview on/off"},
			{Command: "order", Description: "Show an order"},
		},
	}
	_, err := b.api.Request(cfg)
	return err
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.ctx = ctx
	if err := b.setBotCommands(); err != nil {
		b.logger.Warn().Err(err).Msg("set bot commands")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.stopAllRefreshes()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	cmd, args := parseCommand(msg.Text)

	if section, ok := sectionCommands[cmd]; ok {
		b.handleSection(chatID, userID, section)
		return
	}
	switch cmd {
	case "start", "help":
		b.send(chatID, helpText)
	case "login":
		b.handleLogin(chatID, userID, msg.MessageID, args)
	case "logout":
		b.handleLogout(chatID, userID)
	case "range":
		b.handleRange(chatID, userID, args)
	case "refresh":
		b.handleRefresh(chatID, userID, args)
	case "stock":
		b.handleStock(chatID, userID, args)
	case "status":
		b.handleStatus(chatID, userID, args)
	case "note":
		b.handleNote(chatID, userID, args)
	case "place":
		b.handlePlace(chatID, userID, args)
	case "order":
		b.handleOrder(chatID, userID, args)
	case "edit":
		b.handleEdit(chatID, userID, args)
	case "invoice":
		b.handleInvoice(chatID, userID, args)
	case "grant":
		b.handleGrant(chatID, userID, args)
	case "":
	default:
		b.send(chatID, "Unknown command. Send /start for help.")
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Msg("send failed")
	}
}

// state returns the stored state for userID, creating it when missing.
func (b *Bot) state(chatID, userID int64) *chatState {
	b.chatsMu.Lock()
	defer b.chatsMu.Unlock()
	st, ok := b.chats[userID]
	if !ok {
		st = &chatState{rng: rangeChoice{key: analytics.RangeToday}}
		b.chats[userID] = st
	}
	st.chatID = chatID
	return st
}

// session returns who userID is. The configured owner is always Admin.
func (b *Bot) session(userID int64) *models.Session {
	if b.cfg.Telegram.AdminID != 0 && userID == b.cfg.Telegram.AdminID {
		return &models.Session{
			UserID:     "owner",
			TelegramID: userID,
			Name:       "Owner",
			Role:       models.RoleAdmin,
		}
	}
	b.chatsMu.RLock()
	defer b.chatsMu.RUnlock()
	if st, ok := b.chats[userID]; ok {
		return st.session
	}
	return nil
}

func (b *Bot) currentRange(userID int64) analytics.Range {
	b.chatsMu.RLock()
	choice := rangeChoice{key: analytics.RangeToday}
	if st, ok := b.chats[userID]; ok {
		choice = st.rng
	}
	b.chatsMu.RUnlock()

	now := b.dash.Options().Now().In(b.render.loc)
	r, err := choice.resolve(now)
	if err != nil {
		r, _ = analytics.Resolve(analytics.RangeToday, now)
	}
	return r
}

func (b *Bot) requireSession(chatID, userID int64) *models.Session {
	s := b.session(userID)
	if s == nil {
		b.send(chatID, "Please /login first.")
	}
	return s
}

func (b *Bot) handleLogin(chatID, userID int64, messageID int, args []string) {
	// The password should not linger in the chat history.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug().Err(err).Int64(logging.CHAT, chatID).Msg("delete login message")
	}
	if len(args) != 1 {
		b.send(chatID, "Usage: /login <password>")
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	s, err := services.AuthenticateStaff(ctx, userID, args[0])
	var throttled *services.ThrottledError
	switch {
	case errors.As(err, &throttled):
		b.send(chatID, fmt.Sprintf("Too many attempts. Try again in %d seconds.", throttled.Wait))
		return
	case errors.Is(err, services.ErrUnauthorized):
		b.send(chatID, "Wrong password.")
		return
	case err != nil:
		b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Msg("login failed")
		b.send(chatID, "Login failed, please try again later.")
		return
	}
	st := b.state(chatID, userID)
	b.chatsMu.Lock()
	st.session = s
	b.chatsMu.Unlock()
	b.send(chatID, fmt.Sprintf("Welcome, %s (%s).", s.Name, s.Role))
}

func (b *Bot) handleLogout(chatID, userID int64) {
	b.stopRefresh(userID)
	b.chatsMu.Lock()
	delete(b.chats, userID)
	b.chatsMu.Unlock()
	b.send(chatID, "Signed out.")
}

func (b *Bot) handleRange(chatID, userID int64, args []string) {
	choice, err := parseRange(args, b.render.loc)
	if err != nil {
		b.send(chatID, err.Error())
		return
	}
	st := b.state(chatID, userID)
	b.chatsMu.Lock()
	st.rng = choice
	b.chatsMu.Unlock()
	b.send(chatID, "Range set to "+rangeLabel(b.currentRange(userID), b.render.loc))
}

func (b *Bot) handleSection(chatID, userID int64, section dashboard.Section) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	rep, err := b.dash.Load(ctx, s, section, b.currentRange(userID))
	if errors.Is(err, dashboard.ErrForbidden) {
		b.send(chatID, fmt.Sprintf("%s accounts cannot view %s reports.", s.Role, section))
		return
	}
	if err != nil {
		b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Str(logging.SECTION, section.String()).Msg("load failed")
		b.send(chatID, "Could not build the report.")
		return
	}
	b.send(chatID, b.render.render(rep))
}

func (b *Bot) handleRefresh(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	if !s.CanManage() {
		b.send(chatID, fmt.Sprintf("%s accounts cannot subscribe to reports.", s.Role))
		return
	}
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		b.send(chatID, "Usage: /refresh on|off")
		return
	}
	if args[0] == "off" {
		if b.stopRefresh(userID) {
			b.send(chatID, "Live overview stopped.")
		} else {
			b.send(chatID, "Live overview is not running.")
		}
		return
	}

	st := b.state(chatID, userID)
	b.chatsMu.Lock()
	if st.stopRefresh != nil {
		b.chatsMu.Unlock()
		b.send(chatID, "Live overview is already running.")
		return
	}
	ctx, cancel := context.WithCancel(b.ctx)
	st.stopRefresh = cancel
	st.refreshGen++
	st.lastSeq = 0
	gen := st.refreshGen
	b.chatsMu.Unlock()

	interval := b.cfg.Report.RefreshInterval
	r := dashboard.NewRefresher(b.dash, s, interval,
		func(time.Time) analytics.Range { return b.currentRange(userID) },
		func(seq uint64, reports []*dashboard.Report, err error) {
			b.publish(userID, gen, seq, reports, err)
		})
	go r.Run(ctx)
	if interval <= 0 {
		b.send(chatID, "Auto refresh is disabled; sending one overview.")
		return
	}
	b.send(chatID, fmt.Sprintf("Live overview every %s. Send /refresh off to stop.", interval))
}

// publish sends the overview of one refresh unless chatState.accept
// rejects it.
func (b *Bot) publish(userID int64, gen, seq uint64, reports []*dashboard.Report, err error) {
	b.chatsMu.Lock()
	st, ok := b.chats[userID]
	if !ok || !st.accept(gen, seq) {
		b.chatsMu.Unlock()
		return
	}
	chatID := st.chatID
	b.chatsMu.Unlock()

	if err != nil {
		b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Uint64("seq", seq).Msg("refresh failed")
		b.send(chatID, "Refresh failed.")
		return
	}
	for _, rep := range reports {
		if rep.Section == dashboard.SectionOverview {
			b.send(chatID, b.render.render(rep))
			return
		}
	}
}

func (b *Bot) stopRefresh(userID int64) bool {
	b.chatsMu.Lock()
	defer b.chatsMu.Unlock()
	st, ok := b.chats[userID]
	if !ok || st.stopRefresh == nil {
		return false
	}
	st.stopRefresh()
	st.stopRefresh = nil
	return true
}

func (b *Bot) stopAllRefreshes() {
	b.chatsMu.Lock()
	defer b.chatsMu.Unlock()
	for _, st := range b.chats {
		if st.stopRefresh != nil {
			st.stopRefresh()
			st.stopRefresh = nil
		}
	}
}

func (b *Bot) handleStock(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	if len(args) < 2 || len(args) > 3 {
		b.send(chatID, "Usage: /stock <item_id> <delta> [restock|adjustment|usage]")
		return
	}
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		b.send(chatID, "Delta must be a number.")
		return
	}
	action := services.InventoryActionAdjustment
	if len(args) == 3 {
		action = strings.ToLower(args[2])
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	qty, err := services.AdjustInventory(ctx, s, args[0], delta, action)
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		b.send(chatID, "Only managers can adjust stock.")
	case errors.Is(err, services.ErrInventoryItemNotFound):
		b.send(chatID, "No such inventory item.")
	case err != nil:
		b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Msg("adjust inventory")
		b.send(chatID, "Stock update failed: "+err.Error())
	default:
		b.send(chatID, fmt.Sprintf("%s now at %s.", args[0], strconv.FormatFloat(qty, 'f', -1, 64)))
	}
}

func (b *Bot) handleGrant(chatID, userID int64, args []string) {
	s := b.session(userID)
	if s == nil || s.Role != models.RoleAdmin {
		b.send(chatID, "Unauthorized.")
		return
	}
	if len(args) != 2 {
		b.send(chatID, "Usage: /grant <tg_user_id> <employee_id>")
		return
	}
	tgID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(chatID, "tg_user_id must be a number.")
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	password, err := services.ProvisionStaffCredential(ctx, tgID, args[1])
	if errors.Is(err, services.ErrEmployeeNotFound) {
		b.send(chatID, "No active employee with that id.")
		return
	}
	if err != nil {
		b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Msg("grant credential")
		b.send(chatID, "Could not create the login.")
		return
	}
	b.send(chatID, fmt.Sprintf("Login for %d created. Password: %s\nShare it privately; it is not stored in plain text.", tgID, password))
}
