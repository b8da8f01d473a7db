package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/jlpt"
	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/internal/quiz"
	"github.com/example/nihonwa/internal/spaced_repetition"
	"github.com/example/nihonwa/pkg/models"
)

// Callback data prefixes
const (
	callbackMainMenu = "main_menu"
	callbackMenu     = "menu:"   // menu:<command>
	callbackFlip     = "flip:"   // flip:<item id>
	callbackReview   = "review:" // review:<item id>:<response>
	callbackAnswer   = "answer:" // answer:<option index>
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// Reply is a message to send back to the chat
type Reply struct {
	Text    string
	Buttons [][]MenuButton
}

// usageError carries a message meant for the user
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// reviewQueue is a batch of flashcards being worked through
type reviewQueue struct {
	items []models.LearnableItem
	pos   int
}

func (q *reviewQueue) current() (models.LearnableItem, bool) {
	if q == nil || q.pos >= len(q.items) {
		return models.LearnableItem{}, false
	}
	return q.items[q.pos], true
}

// chatSession is the in-progress activity of one chat
type chatSession struct {
	review *reviewQueue
	quiz   *quiz.Session
}

// Handler turns commands and button presses into replies. It does not talk
// to Telegram itself.
type Handler struct {
	store  *progress.Store
	config *BotConfig
	log    *logger.Logger

	mu       sync.Mutex
	gen      *quiz.Generator
	sessions map[int64]*chatSession
}

// NewHandler creates a handler backed by store
func NewHandler(store *progress.Store, config *BotConfig, log *logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		store:    store,
		config:   config,
		log:      log,
		gen:      quiz.NewGenerator(),
		sessions: make(map[int64]*chatSession),
	}
}

// MainMenuButtons returns the main menu keyboard
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🎴 Review", CallbackData: callbackMenu + "review"},
			{Text: "📚 Lessons", CallbackData: callbackMenu + "lessons"},
		},
		{
			{Text: "📊 Progress", CallbackData: callbackMenu + "progress"},
			{Text: "📈 JLPT score", CallbackData: callbackMenu + "score"},
		},
	}
}

// HandleCommand handles bot commands
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command, args string) Reply {
	args = strings.TrimSpace(args)

	var (
		reply Reply
		err   error
	)
	switch command {
	case "start":
		reply = h.handleStart()
	case "help":
		reply = h.handleHelp()
	case "profiles":
		reply = h.handleProfiles()
	case "newprofile":
		reply, err = h.handleNewProfile(ctx, args)
	case "use":
		reply, err = h.handleUse(ctx, args)
	case "deleteprofile":
		reply, err = h.handleDeleteProfile(ctx, args)
	case "level":
		reply, err = h.handleLevel(ctx, args)
	case "review":
		reply, err = h.handleReview(ctx, chatID, args)
	case "lessons":
		reply, err = h.handleLessons(ctx)
	case "lesson":
		reply, err = h.handleLesson(ctx, chatID, args)
	case "progress":
		reply, err = h.handleProgress()
	case "score":
		reply, err = h.handleScore(ctx, args)
	default:
		reply = Reply{Text: "Unknown command. Use /help to see what I can do.", Buttons: MainMenuButtons()}
	}

	if err != nil {
		return h.errorReply(command, err)
	}
	return reply
}

// HandleCallback handles inline button presses
func (h *Handler) HandleCallback(ctx context.Context, chatID int64, data string) Reply {
	var (
		reply Reply
		err   error
	)
	switch {
	case data == callbackMainMenu:
		reply = Reply{Text: "What would you like to do?", Buttons: MainMenuButtons()}
	case strings.HasPrefix(data, callbackMenu):
		return h.HandleCommand(ctx, chatID, strings.TrimPrefix(data, callbackMenu), "")
	case strings.HasPrefix(data, callbackFlip):
		reply, err = h.handleFlip(chatID, strings.TrimPrefix(data, callbackFlip))
	case strings.HasPrefix(data, callbackReview):
		reply, err = h.handleReviewAnswer(ctx, chatID, strings.TrimPrefix(data, callbackReview))
	case strings.HasPrefix(data, callbackAnswer):
		reply, err = h.handleQuizAnswer(ctx, chatID, strings.TrimPrefix(data, callbackAnswer))
	default:
		h.log.Warn("Unknown callback", "chat", chatID, "data", data)
		reply = Reply{Text: "That button has expired.", Buttons: MainMenuButtons()}
	}

	if err != nil {
		return h.errorReply("callback", err)
	}
	return reply
}

func (h *Handler) errorReply(op string, err error) Reply {
	var usage usageError
	var persist *progress.PersistError
	switch {
	case errors.As(err, &usage):
		return Reply{Text: usage.msg}
	case errors.Is(err, progress.ErrNoActiveProfile):
		return Reply{Text: "No active profile. Create one with /newprofile <name> or pick one with /use <name>."}
	case errors.Is(err, progress.ErrProfileNotFound):
		return Reply{Text: "I couldn't find that profile. Use /profiles to list them."}
	case errors.Is(err, progress.ErrInvalidProfile), errors.Is(err, models.ErrUnknownLevel):
		return Reply{Text: "❌ " + err.Error()}
	case errors.As(err, &persist):
		h.log.Error("Failed to save progress", "op", op, "error", err)
		return Reply{Text: "⚠️ I couldn't save your progress. Please try again."}
	}
	h.log.Error("Command failed", "op", op, "error", err)
	return Reply{Text: "⚠️ Something went wrong. Please try again.", Buttons: MainMenuButtons()}
}

func (h *Handler) handleStart() Reply {
	text := "👋 Welcome to Nihonwa!\n\n" +
		"I help you study Japanese for the JLPT with spaced repetition flashcards and lessons.\n\n"
	if profile, ok := h.store.ActiveProfile(); ok {
		text += fmt.Sprintf("Studying as %s (%s).", profile.Name, profile.CurrentLevel)
	} else {
		text += "Create a profile to begin: /newprofile <name> [N5-N1]"
	}
	return Reply{Text: text, Buttons: MainMenuButtons()}
}

func (h *Handler) handleHelp() Reply {
	text := "📖 Commands\n\n" +
		"/profiles - List profiles\n" +
		"/newprofile <name> [level] - Create a profile\n" +
		"/use <name> - Switch profile\n" +
		"/deleteprofile <name> - Delete a profile and its progress\n" +
		"/level <N5-N1> - Change your study level\n\n" +
		"/review [vocabulary|kanji|grammar] - Review due flashcards\n" +
		"/lessons - List vocabulary lessons\n" +
		"/lesson <number> - Start a lesson\n" +
		"/progress - Show your progress\n" +
		"/score [level] - Estimate your JLPT score"
	return Reply{Text: text, Buttons: [][]MenuButton{
		{{Text: "⬅️ Back to menu", CallbackData: callbackMainMenu}},
	}}
}

func (h *Handler) handleProfiles() Reply {
	profiles := h.store.Profiles()
	if len(profiles) == 0 {
		return Reply{Text: "There are no profiles yet. Create one with /newprofile <name>."}
	}

	active, _ := h.store.ActiveProfile()
	var sb strings.Builder
	sb.WriteString("👤 Profiles\n\n")
	for _, p := range profiles {
		marker := "  "
		if p.ID == active.ID {
			marker = "▶ "
		}
		fmt.Fprintf(&sb, "%s%s (%s)\n", marker, p.Name, p.CurrentLevel)
	}
	return Reply{Text: strings.TrimRight(sb.String(), "\n")}
}

func (h *Handler) handleNewProfile(ctx context.Context, args string) (Reply, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return Reply{}, usagef("Usage: /newprofile <name> [N5-N1]")
	}

	level := models.N5
	if len(fields) > 1 {
		if parsed, err := models.ParseLevel(fields[len(fields)-1]); err == nil {
			level = parsed
			fields = fields[:len(fields)-1]
		}
	}
	name := strings.Join(fields, " ")
	if _, ok := h.findProfile(name); ok {
		return Reply{}, usagef("A profile named %q already exists.", name)
	}

	profile, err := h.store.CreateProfile(ctx, models.UserProfile{Name: name, CurrentLevel: level})
	if err != nil {
		return Reply{}, err
	}

	text := fmt.Sprintf("✅ Created profile %s (%s).", profile.Name, profile.CurrentLevel)
	if _, ok := h.store.ActiveProfile(); !ok {
		if err := h.store.SetActiveProfile(ctx, profile.ID); err != nil {
			return Reply{}, err
		}
		text += " It is now active."
	}
	return Reply{Text: text, Buttons: MainMenuButtons()}, nil
}

func (h *Handler) handleUse(ctx context.Context, args string) (Reply, error) {
	if args == "" {
		return Reply{}, usagef("Usage: /use <name>")
	}
	profile, ok := h.findProfile(args)
	if !ok {
		return Reply{}, progress.ErrProfileNotFound
	}
	if err := h.store.SetActiveProfile(ctx, profile.ID); err != nil {
		return Reply{}, err
	}
	h.resetSessions()
	return Reply{
		Text:    fmt.Sprintf("Now studying as %s (%s). XP: %d", profile.Name, profile.CurrentLevel, h.store.TotalXP()),
		Buttons: MainMenuButtons(),
	}, nil
}

func (h *Handler) handleDeleteProfile(ctx context.Context, args string) (Reply, error) {
	if args == "" {
		return Reply{}, usagef("Usage: /deleteprofile <name>")
	}
	profile, ok := h.findProfile(args)
	if !ok {
		return Reply{}, progress.ErrProfileNotFound
	}
	active, _ := h.store.ActiveProfile()
	if err := h.store.DeleteProfile(ctx, profile.ID); err != nil {
		return Reply{}, err
	}
	if active.ID == profile.ID {
		h.resetSessions()
	}
	return Reply{Text: fmt.Sprintf("🗑 Deleted profile %s and its progress.", profile.Name)}, nil
}

func (h *Handler) handleLevel(ctx context.Context, args string) (Reply, error) {
	profile, ok := h.store.ActiveProfile()
	if !ok {
		return Reply{}, progress.ErrNoActiveProfile
	}
	if args == "" {
		info := models.LevelInfos[profile.CurrentLevel]
		return Reply{Text: fmt.Sprintf("Current level: %s\n%s", info.Name, info.Description)}, nil
	}
	level, err := models.ParseLevel(args)
	if err != nil {
		return Reply{}, err
	}
	if _, err := h.store.UpdateProfile(ctx, profile.ID, profile.Name, level); err != nil {
		return Reply{}, err
	}
	info := models.LevelInfos[level]
	return Reply{Text: fmt.Sprintf("🎯 Level set to %s.\nTarget: %d words and %d kanji.", info.Name, info.Vocabulary, info.Kanji)}, nil
}

// findProfile matches an ID or a case-insensitive name
func (h *Handler) findProfile(key string) (models.UserProfile, bool) {
	key = strings.TrimSpace(key)
	for _, p := range h.store.Profiles() {
		if p.ID == key || strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return models.UserProfile{}, false
}

func (h *Handler) resetSessions() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = make(map[int64]*chatSession)
}

func (h *Handler) session(chatID int64) *chatSession {
	s, ok := h.sessions[chatID]
	if !ok {
		s = &chatSession{}
		h.sessions[chatID] = s
	}
	return s
}

func (h *Handler) handleReview(ctx context.Context, chatID int64, args string) (Reply, error) {
	profile, ok := h.store.ActiveProfile()
	if !ok {
		return Reply{}, progress.ErrNoActiveProfile
	}

	kind := models.KindVocabulary
	if args != "" {
		kind = models.ItemKind(strings.ToLower(args))
		if !kind.Valid() {
			return Reply{}, usagef("Usage: /review [vocabulary|kanji|grammar]")
		}
	}

	items, err := h.store.DueItems(ctx, kind, profile.CurrentLevel, h.config.ReviewBatchSize)
	if err != nil {
		return Reply{}, err
	}
	if len(items) == 0 {
		return Reply{Text: fmt.Sprintf("🎉 No %s due at %s. Come back later!", kind, profile.CurrentLevel), Buttons: MainMenuButtons()}, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	queue := &reviewQueue{items: items}
	h.session(chatID).review = queue
	return cardFront(queue), nil
}

func cardFront(q *reviewQueue) Reply {
	item, _ := q.current()
	text := fmt.Sprintf("🎴 Card %d/%d\n\n%s", q.pos+1, len(q.items), item.Term)
	return Reply{Text: text, Buttons: [][]MenuButton{
		{{Text: "🔄 Show answer", CallbackData: callbackFlip + item.ID}},
	}}
}

func cardBack(item models.LearnableItem) Reply {
	var sb strings.Builder
	sb.WriteString(item.Term)
	if item.Reading != "" && item.Reading != item.Term {
		fmt.Fprintf(&sb, " 【%s】", item.Reading)
	}
	fmt.Fprintf(&sb, "\n\n%s", item.Meaning)
	for _, ex := range item.Examples {
		fmt.Fprintf(&sb, "\n• %s", ex)
	}
	sb.WriteString("\n\nHow well did you remember it?")

	data := func(r spaced_repetition.Response) string {
		return callbackReview + item.ID + ":" + string(r)
	}
	return Reply{Text: sb.String(), Buttons: [][]MenuButton{{
		{Text: "❌ Incorrect", CallbackData: data(spaced_repetition.ResponseIncorrect)},
		{Text: "✅ Correct", CallbackData: data(spaced_repetition.ResponseCorrect)},
		{Text: "⭐ Perfect", CallbackData: data(spaced_repetition.ResponsePerfect)},
	}}}
}

func (h *Handler) handleFlip(chatID int64, itemID string) (Reply, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	item, ok := h.session(chatID).review.current()
	if !ok || item.ID != itemID {
		return Reply{Text: "That card is no longer in your review. Use /review to start again."}, nil
	}
	return cardBack(item), nil
}

func (h *Handler) handleReviewAnswer(ctx context.Context, chatID int64, data string) (Reply, error) {
	itemID, resp, ok := strings.Cut(data, ":")
	if !ok || !spaced_repetition.Response(resp).Valid() {
		h.log.Warn("Malformed review callback", "chat", chatID, "data", data)
		return Reply{Text: "That button has expired. Use /review to start again."}, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	queue := h.session(chatID).review
	item, ok := queue.current()
	if !ok || item.ID != itemID {
		return Reply{Text: "That card is no longer in your review. Use /review to start again."}, nil
	}

	quality := spaced_repetition.QualityFromResponse(spaced_repetition.Response(resp))
	outcome, err := h.store.ReviewItem(ctx, itemID, quality)
	if err != nil {
		return Reply{}, err
	}
	queue.pos++

	feedback := fmt.Sprintf("Next review in %s.", spaced_repetition.IntervalText(outcome.Review.State.Interval))
	if _, more := queue.current(); more {
		next := cardFront(queue)
		next.Text = feedback + "\n\n" + next.Text
		return next, nil
	}

	h.session(chatID).review = nil
	return Reply{
		Text:    fmt.Sprintf("%s\n\n✅ Review finished: %d cards.", feedback, len(queue.items)),
		Buttons: MainMenuButtons(),
	}, nil
}

// lessons returns the active level's vocabulary lessons with lock state
func (h *Handler) lessons(ctx context.Context, level models.JLPTLevel) ([]quiz.Lesson, []models.LearnableItem, error) {
	items, err := h.store.Items(ctx, models.KindVocabulary, level)
	if err != nil {
		return nil, nil, err
	}
	lessons := quiz.Unlock(quiz.Lessons(level, items, h.config.LessonSize), func(id string) bool {
		record, ok := h.store.Lesson(id)
		return ok && record.Completed
	})
	return lessons, items, nil
}

func (h *Handler) handleLessons(ctx context.Context) (Reply, error) {
	profile, ok := h.store.ActiveProfile()
	if !ok {
		return Reply{}, progress.ErrNoActiveProfile
	}
	lessons, _, err := h.lessons(ctx, profile.CurrentLevel)
	if err != nil {
		return Reply{}, err
	}
	if len(lessons) == 0 {
		return Reply{Text: fmt.Sprintf("No vocabulary has been imported for %s yet.", profile.CurrentLevel)}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 %s lessons (XP: %d)\n\n", profile.CurrentLevel, h.store.TotalXP())
	for _, l := range lessons {
		icon := "🔓"
		if l.Locked {
			icon = "🔒"
		}
		fmt.Fprintf(&sb, "%s %d. %s (%d words)", icon, l.Order, l.Title, len(l.ItemIDs))
		if record, ok := h.store.Lesson(l.ID); ok {
			status := "✗"
			if record.Completed {
				status = "✓"
			}
			fmt.Fprintf(&sb, " %s %d%%", status, record.Score)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nStart one with /lesson <number>.")
	return Reply{Text: sb.String()}, nil
}

func (h *Handler) handleLesson(ctx context.Context, chatID int64, args string) (Reply, error) {
	profile, ok := h.store.ActiveProfile()
	if !ok {
		return Reply{}, progress.ErrNoActiveProfile
	}
	order, err := strconv.Atoi(args)
	if err != nil {
		return Reply{}, usagef("Usage: /lesson <number>")
	}

	lessons, items, err := h.lessons(ctx, profile.CurrentLevel)
	if err != nil {
		return Reply{}, err
	}
	lesson, ok := quiz.Find(lessons, order)
	if !ok {
		return Reply{}, usagef("There is no lesson %d at %s. Use /lessons to see them.", order, profile.CurrentLevel)
	}
	if lesson.Locked {
		return Reply{}, usagef("🔒 Lesson %d is locked. Pass lesson %d first.", order, order-1)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	exercises := h.gen.Exercises(lesson.Items(items), items)
	session := quiz.NewSession(lesson, exercises)
	h.session(chatID).quiz = session

	reply := questionReply(session)
	reply.Text = fmt.Sprintf("📚 %s\n\n%s", lesson.Title, reply.Text)
	return reply, nil
}

func questionReply(s *quiz.Session) Reply {
	ex, _ := s.Current()
	text := fmt.Sprintf("Question %d/%d\n\n%s", s.Answered()+1, len(s.Exercises), ex.Prompt)
	buttons := make([][]MenuButton, 0, len(ex.Options))
	for i, opt := range ex.Options {
		buttons = append(buttons, []MenuButton{{Text: opt, CallbackData: callbackAnswer + strconv.Itoa(i)}})
	}
	return Reply{Text: text, Buttons: buttons}
}

func (h *Handler) handleQuizAnswer(ctx context.Context, chatID int64, data string) (Reply, error) {
	option, err := strconv.Atoi(data)
	if err != nil {
		return Reply{}, errors.Errorf("malformed answer callback %q", data)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session := h.session(chatID).quiz
	if session == nil {
		return Reply{Text: "There is no lesson in progress. Use /lessons to pick one."}, nil
	}

	correct, ex, err := session.Answer(option)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidOption) || errors.Is(err, quiz.ErrSessionFinished) {
			return Reply{Text: "That answer is no longer valid."}, nil
		}
		return Reply{}, err
	}

	feedback := "✅ Correct!"
	if !correct {
		feedback = fmt.Sprintf("❌ The answer was: %s", ex.Correct())
	}
	if !session.Done() {
		next := questionReply(session)
		next.Text = feedback + "\n\n" + next.Text
		return next, nil
	}

	h.session(chatID).quiz = nil
	outcome, err := h.store.CompleteLesson(ctx, session.Attempt())
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: feedback + "\n\n" + lessonSummary(session, outcome), Buttons: MainMenuButtons()}, nil
}

func lessonSummary(s *quiz.Session, o progress.LessonOutcome) string {
	var sb strings.Builder
	if o.Passed {
		sb.WriteString("🎉 Lesson complete!\n")
	} else {
		fmt.Fprintf(&sb, "Lesson finished. You need %d%% to pass, try again!\n", progress.LessonPassPercentage)
	}
	fmt.Fprintf(&sb, "%d / %d correct (%d%%)\n", s.Correct, len(s.Exercises), o.Record.Score)
	fmt.Fprintf(&sb, "+%d XP (total %d)", o.XPAwarded, o.TotalXP)
	if o.Estimate != nil {
		fmt.Fprintf(&sb, "\nEstimated %s score: %d/180", o.Record.Level, o.Estimate.Total)
	}
	return sb.String()
}

func (h *Handler) handleProgress() (Reply, error) {
	profile, ok := h.store.ActiveProfile()
	if !ok {
		return Reply{}, progress.ErrNoActiveProfile
	}
	lp := h.store.LevelProgress(profile.CurrentLevel)
	info := models.LevelInfos[profile.CurrentLevel]

	completed := 0
	for _, r := range h.store.LessonProgress() {
		if r.Completed && r.Level == profile.CurrentLevel {
			completed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s, %s\n\n", profile.Name, info.Name)
	fmt.Fprintf(&sb, "XP: %d\n", h.store.TotalXP())
	fmt.Fprintf(&sb, "Lessons completed: %d\n\n", completed)
	fmt.Fprintf(&sb, "Vocabulary: %d/%d (%.0f%%)\n", lp.VocabularyMastered, info.Vocabulary, lp.Skills.Vocabulary)
	fmt.Fprintf(&sb, "Kanji: %d/%d (%.0f%%)\n", lp.KanjiMastered, info.Kanji, lp.Skills.Kanji)
	fmt.Fprintf(&sb, "Grammar patterns: %d\n", lp.GrammarPatternsMastered)
	fmt.Fprintf(&sb, "Articles read: %d (%.0f%%)", lp.ArticlesRead, lp.Skills.Reading)
	if lp.EstimatedScore != nil {
		fmt.Fprintf(&sb, "\n\nEstimated JLPT score: %d/180", lp.EstimatedScore.Total)
	}
	return Reply{Text: sb.String(), Buttons: MainMenuButtons()}, nil
}

func (h *Handler) handleScore(ctx context.Context, args string) (Reply, error) {
	profile, ok := h.store.ActiveProfile()
	if !ok {
		return Reply{}, progress.ErrNoActiveProfile
	}
	level := profile.CurrentLevel
	if args != "" {
		parsed, err := models.ParseLevel(args)
		if err != nil {
			return Reply{}, err
		}
		level = parsed
	}

	estimate, err := h.store.RecalculateEstimatedScore(ctx, level)
	if err != nil {
		return Reply{}, err
	}
	if estimate == nil {
		estimate = h.store.LevelProgress(level).EstimatedScore
	}
	if estimate == nil {
		return Reply{Text: fmt.Sprintf("Complete a %s lesson to get a score estimate.", level)}, nil
	}

	text, err := FormatScore(level, *estimate)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text, Buttons: MainMenuButtons()}, nil
}

// FormatScore renders an estimate with each section's minimum and the pass mark
func FormatScore(level models.JLPTLevel, score models.EstimatedJLPTScore) (string, error) {
	req, err := jlpt.RequirementsFor(level)
	if err != nil {
		return "", err
	}

	sections := []struct {
		section models.SectionType
		value   int
	}{
		{models.SectionLanguageKnowledge, score.LanguageKnowledge},
	}
	if req.HasSeparateReading {
		sections = append(sections, struct {
			section models.SectionType
			value   int
		}{models.SectionReading, score.Reading})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Estimated JLPT %s score\n\n", level)
	for _, s := range sections {
		name, err := jlpt.SectionName(s.section, level)
		if err != nil {
			return "", err
		}
		maxScore, err := jlpt.SectionMaxScore(s.section, level)
		if err != nil {
			return "", err
		}
		minimum, err := jlpt.SectionMinimum(s.section, level)
		if err != nil {
			return "", err
		}
		mark := "✅"
		if s.value < minimum {
			mark = "❌"
		}
		fmt.Fprintf(&sb, "%s %s: %d/%d (min %d)\n", mark, name, s.value, maxScore, minimum)
	}
	fmt.Fprintf(&sb, "\nTotal: %d/180 (pass mark %d)\n", score.Total, req.TotalPassMark)
	if score.Passed {
		sb.WriteString("Result: ✅ Pass")
	} else {
		sb.WriteString("Result: ❌ Not yet")
	}
	return sb.String(), nil
}
