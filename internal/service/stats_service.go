package service

import (
	"fmt"
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
)

const (
	adminStatsCacheKey = "stats:admin"
	adminStatsCacheTTL = 30 * time.Second

	// Used when a session's assessment summary is unavailable.
	estimatedDurationSeconds = 45 * 60
)

// UserStats summarizes a candidate's history.
type UserStats struct {
	TestsCompleted int     `json:"tests_completed"`
	AverageScore   float64 `json:"average_score"`
	TotalTime      int     `json:"total_time"` // seconds
	SkillLevel     string  `json:"skill_level"`
}

// AdminStats is the platform dashboard snapshot.
type AdminStats struct {
	ActiveTests    int64 `json:"active_tests"`
	CompletedToday int64 `json:"completed_today"`
	TotalUsers     int64 `json:"total_users"`
}

// StatsService computes candidate and platform statistics.
type StatsService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *StatsService {
	return &StatsService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
	}
}

// GetUserStats aggregates a candidate's completed sessions into counts, the
// average composite score, total time spent and a skill level band.
func (s *StatsService) GetUserStats(userID uint) (*UserStats, error) {
	sessions, err := s.sessionRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{SkillLevel: "Beginner"}
	var scoreSum float64
	var scored int

	for _, session := range sessions {
		if session.Status != entity.SessionStatusCompleted {
			continue
		}
		stats.TestsCompleted++

		if session.TotalScore != nil {
			scoreSum += *session.TotalScore
			scored++
		}

		budget := estimatedDurationSeconds
		if session.Assessment != nil {
			budget = session.Assessment.DurationSeconds()
		}
		spent := budget - session.TimeRemaining
		if spent < 0 {
			spent = 0
		}
		stats.TotalTime += spent
	}

	if scored > 0 {
		stats.AverageScore = scoreSum / float64(scored)
	}

	switch {
	case stats.AverageScore >= 90:
		stats.SkillLevel = "Expert"
	case stats.AverageScore >= 80:
		stats.SkillLevel = "Advanced"
	case stats.AverageScore >= 70:
		stats.SkillLevel = "Intermediate"
	}

	return stats, nil
}

// GetAdminStats returns the dashboard counters. Results are cached for a
// short interval because every admin page load requests them.
func (s *StatsService) GetAdminStats() (*AdminStats, error) {
	var cached AdminStats
	if err := s.cacheRepo.GetJSON(adminStatsCacheKey, &cached); err == nil {
		return &cached, nil
	}

	active, err := s.sessionRepo.CountByStatus(entity.SessionStatusInProgress)
	if err != nil {
		return nil, err
	}

	// Completed today means completed_at within [midnight, midnight+24h)
	// in server local time.
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	completedToday, err := s.sessionRepo.CountCompletedBetween(midnight, midnight.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}

	stats := &AdminStats{
		ActiveTests:    active,
		CompletedToday: completedToday,
		TotalUsers:     totalUsers,
	}
	if err := s.cacheRepo.SetJSON(adminStatsCacheKey, stats, adminStatsCacheTTL); err != nil {
		log.Printf("[StatsService] Warning: failed to cache admin stats: %v", err)
	}
	return stats, nil
}

// ExportAssessmentResults builds an xlsx workbook with one row per completed
// session of the assessment.
func (s *StatsService) ExportAssessmentResults(assessmentID uint) (*excelize.File, error) {
	sessions, err := s.sessionRepo.ListCompletedByAssessment(assessmentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Session ID", "User ID", "Username", "Email", "Completed At",
		"Total Score", "MCQ Score", "Subjective Score", "Voice Score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	userCache := make(map[uint]*entity.User)
	for row, session := range sessions {
		user := userCache[session.UserID]
		if user == nil {
			loaded, err := s.userRepo.GetByID(session.UserID)
			if err != nil {
				log.Printf("[StatsService] Warning: failed to load user #%d for export: %v", session.UserID, err)
			} else {
				userCache[session.UserID] = loaded
				user = loaded
			}
		}

		values := []interface{}{
			session.ID,
			session.UserID,
			"",
			"",
			"",
			scoreOrEmpty(session.TotalScore),
			scoreOrEmpty(session.MCQScore),
			scoreOrEmpty(session.SubjectiveScore),
			scoreOrEmpty(session.VoiceScore),
		}
		if user != nil {
			values[2] = user.Username
			values[3] = user.Email
		}
		if session.CompletedAt != nil {
			values[4] = session.CompletedAt.Format(time.RFC3339)
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	log.Printf("[StatsService] Exported %d completed sessions for assessment #%d", len(sessions), assessmentID)
	return f, nil
}

func scoreOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
