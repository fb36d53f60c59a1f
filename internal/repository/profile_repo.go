package repository

import (
	"database/sql"
	"fmt"

	"quizhub/internal/database"
	"quizhub/internal/models"
)

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ProfileRepository) WithTx(tx *database.Tx) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

const profileColumns = `id, user_id, is_quiz_admin, avatar, bio,
	preferred_difficulty, preferred_category_id, questions_per_quiz, theme,
	email_notifications, current_streak, longest_streak, last_quiz_date,
	total_points, created_at, updated_at`

func (r *ProfileRepository) scanProfile(row interface{ Scan(...interface{}) error }) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	var categoryID sql.NullInt64
	var lastQuizDate sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.IsQuizAdmin,
		&p.Avatar,
		&p.Bio,
		&p.PreferredDifficulty,
		&categoryID,
		&p.QuestionsPerQuiz,
		&p.Theme,
		&p.EmailNotifications,
		&p.CurrentStreak,
		&p.LongestStreak,
		&lastQuizDate,
		&p.TotalPoints,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		p.PreferredCategoryID = &categoryID.Int64
	}
	if lastQuizDate.Valid {
		p.LastQuizDate = &lastQuizDate.Time
	}
	return p, nil
}

// GetByUserID retrieves the profile for a user, or nil if none exists
func (r *ProfileRepository) GetByUserID(userID int64) (*models.UserProfile, error) {
	query := "SELECT " + profileColumns + " FROM user_profiles WHERE user_id = ?"
	return r.scanProfile(r.db.QueryRow(query, userID))
}

// Create inserts a profile with default preferences for a user
func (r *ProfileRepository) Create(userID int64) (*models.UserProfile, error) {
	query := "INSERT INTO user_profiles (user_id) VALUES (?)"
	if _, err := r.db.ExecReturningID(query, userID); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return r.GetByUserID(userID)
}

// GetOrCreate fetches a user's profile, creating one on first access
func (r *ProfileRepository) GetOrCreate(userID int64) (*models.UserProfile, error) {
	profile, err := r.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}
	return r.Create(userID)
}

// UpdatePreferences persists the profile-form fields
func (r *ProfileRepository) UpdatePreferences(p *models.UserProfile) error {
	var categoryID interface{}
	if p.PreferredCategoryID != nil {
		categoryID = *p.PreferredCategoryID
	}
	query := `
		UPDATE user_profiles
		SET avatar = ?, bio = ?, preferred_difficulty = ?, preferred_category_id = ?,
		    questions_per_quiz = ?, theme = ?, email_notifications = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	_, err := r.db.Exec(query, p.Avatar, p.Bio, p.PreferredDifficulty, categoryID,
		p.QuestionsPerQuiz, p.Theme, p.EmailNotifications, p.UserID)
	return err
}

// UpdateProgress persists the points and streak fields after a submission
func (r *ProfileRepository) UpdateProgress(p *models.UserProfile) error {
	var lastQuizDate interface{}
	if p.LastQuizDate != nil {
		lastQuizDate = *p.LastQuizDate
	}
	query := `
		UPDATE user_profiles
		SET total_points = ?, current_streak = ?, longest_streak = ?,
		    last_quiz_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	_, err := r.db.Exec(query, p.TotalPoints, p.CurrentStreak, p.LongestStreak,
		lastQuizDate, p.UserID)
	return err
}

// SetQuizAdmin toggles the quiz-admin capability flag
func (r *ProfileRepository) SetQuizAdmin(userID int64, isAdmin bool) error {
	query := "UPDATE user_profiles SET is_quiz_admin = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?"
	_, err := r.db.Exec(query, isAdmin, userID)
	return err
}

// LeaderboardEntry is one row of the points leaderboard
type LeaderboardEntry struct {
	Rank        int
	UserID      int64
	Username    string
	TotalPoints int
	Completed   int
	ScorePct    int
}

// Leaderboard returns the top users by total points, with completed-attempt
// counts and overall score percentage per user.
func (r *ProfileRepository) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	query := `
		SELECT p.user_id, u.username, p.total_points,
		       COALESCE(a.completed, 0), COALESCE(a.total_score, 0), COALESCE(a.total_questions, 0)
		FROM user_profiles p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN (
			SELECT user_id,
			       COUNT(*) AS completed,
			       SUM(score) AS total_score,
			       SUM(total_questions) AS total_questions
			FROM quiz_attempts
			WHERE status = 'completed'
			GROUP BY user_id
		) a ON a.user_id = p.user_id
		WHERE p.total_points > 0
		ORDER BY p.total_points DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 0
	for rows.Next() {
		var e LeaderboardEntry
		var totalScore, totalQuestions int
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalPoints, &e.Completed, &totalScore, &totalQuestions); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		if totalQuestions > 0 {
			e.ScorePct = int(float64(totalScore)/float64(totalQuestions)*100 + 0.5)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RankOfUser returns a user's 1-based position in the points ordering, or 0
// if the user has no points yet.
func (r *ProfileRepository) RankOfUser(userID int64) (int, error) {
	profile, err := r.GetByUserID(userID)
	if err != nil {
		return 0, err
	}
	if profile == nil || profile.TotalPoints <= 0 {
		return 0, nil
	}

	var ahead int
	query := "SELECT COUNT(*) FROM user_profiles WHERE total_points > ?"
	if err := r.db.QueryRow(query, profile.TotalPoints).Scan(&ahead); err != nil {
		return 0, err
	}
	return ahead + 1, nil
}
