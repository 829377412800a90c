package service

import (
	"context"
	"encoding/json"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/progress"
	"ethioheritage_backend/internal/repository"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AchievementService struct {
	Repo    *repository.AchievementRepository
	Catalog []model.AchievementDefinition
	Rules   []progress.Rule
}

func NewAchievementService(repo *repository.AchievementRepository) *AchievementService {
	return &AchievementService{
		Repo:    repo,
		Catalog: progress.Catalog,
		Rules:   progress.Rules,
	}
}

func (s *AchievementService) definition(id string) (model.AchievementDefinition, bool) {
	for _, d := range s.Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return model.AchievementDefinition{}, false
}

type achievementContext struct {
	CourseID uint `json:"courseId,omitempty"`
	LessonID uint `json:"lessonId,omitempty"`
	Streak   int  `json:"streak,omitempty"`
	Score    *int `json:"score,omitempty"`
}

// Award evaluates the rules for one completion and persists the newly earned achievements
// through tx. Only rows actually written are returned, so a learner is told about each badge once.
func (s *AchievementService) Award(tx *gorm.DB, userID uint, e progress.Evaluation, now time.Time) ([]model.AchievementView, error) {
	repo := s.Repo.WithTx(tx)

	earned, err := repo.EarnedIDs(userID)
	if err != nil {
		return nil, err
	}

	candidates := progress.Evaluate(s.Catalog, s.Rules, e, earned)
	if len(candidates) == 0 {
		return nil, nil
	}

	ctxData := achievementContext{Streak: e.After.CurrentStreak, Score: e.Score}
	if e.Lesson != nil {
		ctxData.CourseID = e.Lesson.CourseID
		ctxData.LessonID = e.Lesson.LessonID
	}
	raw, err := json.Marshal(ctxData)
	if err != nil {
		return nil, err
	}

	var unlocked []model.AchievementView
	for _, def := range candidates {
		created, err := repo.CreateIfAbsent(&model.EarnedAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			Type:          def.Type,
			EarnedAt:      now,
			Context:       datatypes.JSON(raw),
		})
		if err != nil {
			return nil, err
		}
		if created {
			unlocked = append(unlocked, model.AchievementView{AchievementDefinition: def, EarnedAt: now})
		}
	}
	return unlocked, nil
}

// ListAchievements joins the learner's earned records with the catalog, oldest first.
func (s *AchievementService) ListAchievements(ctx context.Context, userID uint) ([]model.AchievementView, error) {
	earned, err := s.Repo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	views := make([]model.AchievementView, 0, len(earned))
	for _, a := range earned {
		def, ok := s.definition(a.AchievementID)
		if !ok {
			// retired catalog entry
			def = model.AchievementDefinition{ID: a.AchievementID, Type: a.Type, Name: a.AchievementID}
		}
		views = append(views, model.AchievementView{AchievementDefinition: def, EarnedAt: a.EarnedAt})
	}
	return views, nil
}

func (s *AchievementService) ListCatalog() []model.AchievementDefinition {
	out := make([]model.AchievementDefinition, len(s.Catalog))
	copy(out, s.Catalog)
	return out
}
