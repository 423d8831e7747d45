package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
	templates "github.com/safevoice-app/safevoice-api/templates/html"
)

// activityRetention is how long recent-activity entries are kept before the
// nightly prune removes them
const activityRetention = 90 * 24 * time.Hour

// Scheduler handles periodic background jobs: counter rollups, the urgent
// report digest and activity-feed pruning
type Scheduler struct {
	cron   *cron.Cron
	LikeDB databases.StoryLikeDatabase
	ViewDB databases.StoryViewDatabase
	RDB    databases.ReportDatabase
	ActDB  databases.ActivityDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	likeDB databases.StoryLikeDatabase,
	viewDB databases.StoryViewDatabase,
	rDB databases.ReportDatabase,
	actDB databases.ActivityDatabase,
) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		LikeDB: likeDB,
		ViewDB: viewDB,
		RDB:    rDB,
		ActDB:  actDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Recompute like/view count views every 5 minutes. This also reconciles
	// any optimistic drift left behind by duplicate like submissions.
	_, err := s.cron.AddFunc("*/5 * * * *", s.refreshCounts)
	if err != nil {
		zap.S().Errorw("failed to register counter rollup job", "error", err)
	}

	// Email a digest of unresolved High/Critical reports every hour
	_, err = s.cron.AddFunc("0 * * * *", s.sendAlertDigest)
	if err != nil {
		zap.S().Errorw("failed to register alert digest job", "error", err)
	}

	// Prune old recent-activity entries daily at 4 AM UTC
	_, err = s.cron.AddFunc("0 4 * * *", s.pruneActivity)
	if err != nil {
		zap.S().Errorw("failed to register activity prune job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

func (s *Scheduler) refreshCounts() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.LikeDB.RefreshCounts(ctx); err != nil {
		zap.S().Errorw("failed to refresh like counts", "error", err)
	}
	if err := s.ViewDB.RefreshCounts(ctx); err != nil {
		zap.S().Errorw("failed to refresh view counts", "error", err)
	}
}

func (s *Scheduler) sendAlertDigest() {
	toEmail := os.Getenv("ALERT_DIGEST_TO")
	if toEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reports, err := s.RDB.Find(ctx, models.AlertFilter())
	if err != nil {
		zap.S().Errorw("failed to load reports for alert digest", "error", err)
		return
	}
	if len(reports) == 0 {
		return
	}

	lines := make([]string, 0, len(reports))
	for _, report := range reports {
		age := time.Since(report.CreatedAt.Time()).Round(time.Hour)
		lines = append(lines, fmt.Sprintf("[%s/%s] %s (open for %s)", report.Priority, report.Status, report.Title, age))
	}

	subject := fmt.Sprintf("SafeVoice: %d reports need urgent attention", len(reports))
	if err := s.sendEmail(toEmail, subject, templates.RenderAlertDigest(lines)); err != nil {
		zap.S().Errorw("failed to send alert digest", "error", err, "to", toEmail)
		return
	}
	zap.S().Infow("alert digest sent", "reports", len(reports), "to", toEmail)
}

func (s *Scheduler) pruneActivity() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-activityRetention))
	deleted, err := s.ActDB.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		zap.S().Errorw("failed to prune recent activity", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("pruned recent activity", "deleted", deleted)
	}
}

func (s *Scheduler) sendEmail(toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("SafeVoice", "no-reply@safevoice.app")
	to := mail.NewEmail("", toEmail)
	msg := mail.NewSingleEmail(from, subject, to, subject, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(msg)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}
