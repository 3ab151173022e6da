package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dom/mama-respira/internal/completion"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	DefaultBitacoraPage = 30
	MaxBitacoraPage     = 100

	dateLayout       = "2006-01-02"
	summaryMaxTokens = 300
	summaryTimeout   = 20 * time.Second

	SummaryNoData  = "Registro guardado. La coach revisará los datos."
	SummaryFailure = "Registro guardado exitosamente."

	summarySystem = "Eres una coach de sueño infantil profesional. Da análisis concisos y útiles."
	summaryPrompt = `Analiza este registro de sueño de un bebé y da un resumen breve (2-3 oraciones)
para la coach de sueño. Incluye patrones observados y posibles recomendaciones:

%s

Responde solo con el resumen, sin introducciones.`
)

// BitacoraInput is the client-editable part of a daily log.
type BitacoraInput struct {
	Date                    string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PreviousDayWakeTime     *string              `json:"previous_day_wake_time"`
	Naps                    []domain.NapEntry    `json:"naps" validate:"max=3"`
	HowBabyAte              *string              `json:"how_baby_ate"`
	RelaxingRoutineStart    *string              `json:"relaxing_routine_start"`
	BabyMood                *string              `json:"baby_mood"`
	LastFeedingTime         *string              `json:"last_feeding_time"`
	LaidDownForBed          *string              `json:"laid_down_for_bed"`
	FellAsleepAt            *string              `json:"fell_asleep_at"`
	TimeToFallAsleepMinutes *int                 `json:"time_to_fall_asleep_minutes" validate:"omitempty,min=0"`
	NumberOfWakings         *int                 `json:"number_of_wakings" validate:"omitempty,min=0"`
	NightWakings            []domain.NightWaking `json:"night_wakings"`
	MorningWakeTime         *string              `json:"morning_wake_time"`
	Notes                   *string              `json:"notes"`
}

type BitacoraService struct {
	userRepo     repository.UserRepository
	bitacoraRepo repository.BitacoraRepository
	completer    completion.Completer
	log          *zap.Logger
	now          func() time.Time
}

func NewBitacoraService(userRepo repository.UserRepository, bitacoraRepo repository.BitacoraRepository, completer completion.Completer, log *zap.Logger) *BitacoraService {
	if completer == nil {
		completer = completion.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BitacoraService{
		userRepo:     userRepo,
		bitacoraRepo: bitacoraRepo,
		completer:    completer,
		log:          log,
		now:          time.Now,
	}
}

// Create stores a new daily log numbered after the owner's previous ones.
func (s *BitacoraService) Create(ctx context.Context, owner *domain.User, input BitacoraInput) (*domain.Bitacora, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}
	if len(input.Naps) > domain.MaxNaps {
		return nil, domain.ErrTooManyNaps
	}

	count, err := s.bitacoraRepo.CountByUser(ctx, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("count bitacoras: %w", err)
	}

	now := s.now().UTC()
	b := &domain.Bitacora{
		ID:        NewBitacoraID(),
		UserID:    owner.UserID,
		DayNumber: int(count) + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(b, input, date)
	b.AISummary = s.summarize(ctx, b)

	if err := s.bitacoraRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("store bitacora: %w", err)
	}
	return b, nil
}

// Update replaces the editable fields of an entry the caller owns and
// regenerates its summary.
func (s *BitacoraService) Update(ctx context.Context, owner *domain.User, id string, input BitacoraInput) (*domain.Bitacora, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != owner.UserID {
		return nil, domain.ErrNotBitacoraOwner
	}

	date := b.Date
	if input.Date != "" {
		if date, err = s.resolveDate(input.Date); err != nil {
			return nil, err
		}
	}
	if len(input.Naps) > domain.MaxNaps {
		return nil, domain.ErrTooManyNaps
	}

	applyInput(b, input, date)
	b.UpdatedAt = s.now().UTC()
	b.AISummary = s.summarize(ctx, b)

	if err := s.bitacoraRepo.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrBitacoraNotFound
		}
		return nil, fmt.Errorf("update bitacora: %w", err)
	}
	return b, nil
}

// Get returns an entry to its owner or to the coach. Anyone else gets
// not found.
func (s *BitacoraService) Get(ctx context.Context, viewer *domain.User, id string) (*domain.Bitacora, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != viewer.UserID && !viewer.IsCoach() {
		return nil, domain.ErrBitacoraNotFound
	}
	return b, nil
}

func (s *BitacoraService) List(ctx context.Context, owner *domain.User, limit int) ([]*domain.Bitacora, error) {
	list, err := s.bitacoraRepo.ListByUser(ctx, owner.UserID, ClampLimit(limit, DefaultBitacoraPage, MaxBitacoraPage))
	if err != nil {
		return nil, fmt.Errorf("list bitacoras: %w", err)
	}
	return list, nil
}

// Today returns the caller's entry for the current UTC date, or nil.
func (s *BitacoraService) Today(ctx context.Context, owner *domain.User) (*domain.Bitacora, error) {
	b, err := s.bitacoraRepo.GetByUserAndDate(ctx, owner.UserID, s.now().UTC().Format(dateLayout))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("today bitacora: %w", err)
	}
	return b, nil
}

// ListForClient is the coach's view of one client's logs.
func (s *BitacoraService) ListForClient(ctx context.Context, clientID string, limit int) ([]*domain.Bitacora, error) {
	if _, err := s.userRepo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	list, err := s.bitacoraRepo.ListByUser(ctx, clientID, ClampLimit(limit, DefaultBitacoraPage, MaxBitacoraPage))
	if err != nil {
		return nil, fmt.Errorf("list bitacoras: %w", err)
	}
	return list, nil
}

func (s *BitacoraService) get(ctx context.Context, id string) (*domain.Bitacora, error) {
	b, err := s.bitacoraRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrBitacoraNotFound
		}
		return nil, fmt.Errorf("get bitacora: %w", err)
	}
	return b, nil
}

func (s *BitacoraService) resolveDate(date string) (string, error) {
	if date == "" {
		return s.now().UTC().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", domain.ErrInvalidDate
	}
	return date, nil
}

func applyInput(b *domain.Bitacora, in BitacoraInput, date string) {
	b.Date = date
	b.PreviousDayWakeTime = in.PreviousDayWakeTime
	b.Naps = datatypes.NewJSONSlice(nonNil(in.Naps))
	b.HowBabyAte = in.HowBabyAte
	b.RelaxingRoutineStart = in.RelaxingRoutineStart
	b.BabyMood = in.BabyMood
	b.LastFeedingTime = in.LastFeedingTime
	b.LaidDownForBed = in.LaidDownForBed
	b.FellAsleepAt = in.FellAsleepAt
	b.TimeToFallAsleepMinutes = in.TimeToFallAsleepMinutes
	b.NumberOfWakings = in.NumberOfWakings
	b.NightWakings = datatypes.NewJSONSlice(nonNil(in.NightWakings))
	b.MorningWakeTime = in.MorningWakeTime
	b.Notes = in.Notes
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// summarize asks the completion service to condense the observations for
// the coach. It never fails: missing data and completion errors map to
// fixed messages.
func (s *BitacoraService) summarize(ctx context.Context, b *domain.Bitacora) *string {
	lines := SummaryLines(b)
	if len(lines) == 0 {
		return ptr(SummaryNoData)
	}

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	text, err := s.completer.Complete(ctx, summarySystem, fmt.Sprintf(summaryPrompt, strings.Join(lines, "\n")), summaryMaxTokens)
	if err != nil {
		if !errors.Is(err, completion.ErrDisabled) {
			s.log.Warn("bitacora summary failed", zap.String("bitacora_id", b.ID), zap.Error(err))
		}
		return ptr(SummaryFailure)
	}
	return &text
}

// SummaryLines lists the recorded observations of a log, one per line.
func SummaryLines(b *domain.Bitacora) []string {
	var lines []string

	if present(b.PreviousDayWakeTime) {
		lines = append(lines, "Despertó ayer: "+*b.PreviousDayWakeTime)
	}

	var naps []string
	for i, nap := range b.Naps {
		if !nap.Recorded() {
			continue
		}
		desc := "Siesta " + strconv.Itoa(i+1)
		if nap.DurationMinutes != nil && *nap.DurationMinutes > 0 {
			desc += fmt.Sprintf(": %dmin", *nap.DurationMinutes)
		}
		if present(nap.HowFellAsleep) {
			desc += " (" + *nap.HowFellAsleep + ")"
		}
		naps = append(naps, desc)
	}
	if len(naps) > 0 {
		lines = append(lines, "Siestas: "+strings.Join(naps, ", "))
	}

	if present(b.HowBabyAte) {
		lines = append(lines, "Alimentación: "+*b.HowBabyAte)
	}
	if present(b.BabyMood) {
		lines = append(lines, "Humor: "+*b.BabyMood)
	}
	if b.TimeToFallAsleepMinutes != nil && *b.TimeToFallAsleepMinutes > 0 {
		lines = append(lines, fmt.Sprintf("Tardó en dormirse: %dmin", *b.TimeToFallAsleepMinutes))
	}
	if b.NumberOfWakings != nil {
		lines = append(lines, fmt.Sprintf("Despertares nocturnos: %d", *b.NumberOfWakings))
	}
	if present(b.MorningWakeTime) {
		lines = append(lines, "Despertó hoy: "+*b.MorningWakeTime)
	}

	return lines
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func ptr[T any](v T) *T {
	return &v
}

// NewBitacoraID returns a random bitácora identifier.
func NewBitacoraID() string {
	return "bit_" + newHexID()
}
