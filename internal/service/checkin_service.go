package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/mama-respira/internal/completion"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultCheckinPage       = 7
	DefaultClientCheckinPage = 30
	MaxCheckinPage           = 100

	validationMaxTokens = 200

	// CheckinFallback is returned to the mother whenever no generated
	// validation is available.
	CheckinFallback = "Gracias por compartir. Recuerda: cada día que pasas con tu bebé es un día de amor. 💛"

	validationSystem = `Eres "Abuela Sabia", una consejera empática y cariñosa para mamás primerizas exhaustas.
Valida siempre la emoción antes de cualquier consejo, habla en español sencillo con frases cortas,
nunca des consejos médicos directos y nunca juzgues decisiones de crianza.`
	validationInstruction = "\n\nResponde con una validación corta y cariñosa (máximo 2 oraciones)."
)

var moodContext = map[domain.Mood]string{
	domain.MoodLow:     "La mamá se siente muy mal/triste hoy.",
	domain.MoodNeutral: "La mamá se siente regular/neutral hoy.",
	domain.MoodGood:    "La mamá se siente bien hoy.",
}

type CheckinInput struct {
	Mood        domain.Mood `json:"mood" validate:"required,min=1,max=3"`
	SleepStart  *string     `json:"sleep_start"`
	SleepEnd    *string     `json:"sleep_end"`
	BabyWakeups *int        `json:"baby_wakeups" validate:"omitempty,min=0"`
	BrainDump   *string     `json:"brain_dump" validate:"omitempty,max=5000"`
}

type CheckinService struct {
	userRepo    repository.UserRepository
	checkinRepo repository.CheckinRepository
	completer   completion.Completer
	log         *zap.Logger
	now         func() time.Time
}

func NewCheckinService(userRepo repository.UserRepository, checkinRepo repository.CheckinRepository, completer completion.Completer, log *zap.Logger) *CheckinService {
	if completer == nil {
		completer = completion.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckinService{
		userRepo:    userRepo,
		checkinRepo: checkinRepo,
		completer:   completer,
		log:         log,
		now:         time.Now,
	}
}

// Create stores the day's mood entry together with a short validation
// message for the mother.
func (s *CheckinService) Create(ctx context.Context, owner *domain.User, input CheckinInput) (*domain.Checkin, error) {
	if !input.Mood.IsValid() {
		return nil, domain.ErrInvalidMood
	}

	c := &domain.Checkin{
		ID:          NewCheckinID(),
		UserID:      owner.UserID,
		Mood:        input.Mood,
		SleepStart:  input.SleepStart,
		SleepEnd:    input.SleepEnd,
		BabyWakeups: input.BabyWakeups,
		BrainDump:   input.BrainDump,
		CreatedAt:   s.now().UTC(),
	}
	c.AIResponse = s.validate(ctx, c)

	if err := s.checkinRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store checkin: %w", err)
	}
	return c, nil
}

func (s *CheckinService) List(ctx context.Context, owner *domain.User, limit int) ([]*domain.Checkin, error) {
	list, err := s.checkinRepo.ListByUser(ctx, owner.UserID, ClampLimit(limit, DefaultCheckinPage, MaxCheckinPage))
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return list, nil
}

// ListForClient is the coach's view of one client's check-ins.
func (s *CheckinService) ListForClient(ctx context.Context, clientID string, limit int) ([]*domain.Checkin, error) {
	if _, err := s.userRepo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	list, err := s.checkinRepo.ListByUser(ctx, clientID, ClampLimit(limit, DefaultClientCheckinPage, MaxCheckinPage))
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return list, nil
}

func (s *CheckinService) validate(ctx context.Context, c *domain.Checkin) *string {
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	text, err := s.completer.Complete(ctx, validationSystem, ValidationPrompt(c.Mood, c.BrainDump), validationMaxTokens)
	if err != nil || text == "" {
		if err != nil && !errors.Is(err, completion.ErrDisabled) {
			s.log.Warn("checkin validation failed", zap.String("checkin_id", c.ID), zap.Error(err))
		}
		return ptr(CheckinFallback)
	}
	return &text
}

// ValidationPrompt describes the mother's mood and, when she wrote one,
// quotes her brain dump.
func ValidationPrompt(mood domain.Mood, brainDump *string) string {
	prompt := moodContext[mood]
	if present(brainDump) {
		prompt += fmt.Sprintf(" Ella escribió: '%s'", *brainDump)
	}
	return prompt + validationInstruction
}

// NewCheckinID returns a random check-in identifier.
func NewCheckinID() string {
	return "chk_" + newHexID()
}
