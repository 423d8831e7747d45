package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/api"
	"github.com/safevoice-app/safevoice-api/api/scheduler"
	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
)

// validate is the shared request validator for all handlers
var validate = validator.New()

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for member auth middleware
	m := api.MiddlewareDB{DB: databases.NewMemberDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	feed := NewChangeFeed()

	member := Member{DB: databases.NewMemberDatabase(a.dbHelper), ADB: databases.NewActivityDatabase(a.dbHelper), Feed: feed}
	report := Report{DB: databases.NewReportDatabase(a.dbHelper), ADB: databases.NewActivityDatabase(a.dbHelper), Feed: feed}
	story := Story{
		DB:   databases.NewStoryDatabase(a.dbHelper),
		LDB:  databases.NewStoryLikeDatabase(a.dbHelper),
		VDB:  databases.NewStoryViewDatabase(a.dbHelper),
		CDB:  databases.NewCommentDatabase(a.dbHelper),
		MDB:  databases.NewMemberDatabase(a.dbHelper),
		Feed: feed,
	}
	resource := Resource{DB: databases.NewResourceDatabase(a.dbHelper), Feed: feed}
	service := SupportService{DB: databases.NewSupportServiceDatabase(a.dbHelper), Feed: feed}
	admin := Admin{ADB: databases.NewAdminDatabase(a.dbHelper), RDB: databases.NewAdminResetDatabase(a.dbHelper)}
	activity := Activity{DB: databases.NewActivityDatabase(a.dbHelper)}
	chat := NewChat()
	upload := NewUpload()

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// realtime change feed for dashboard reconciliation
	r.HandleFunc("/ws/changes", feed.SubscribeHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/members", http.HandlerFunc(member.CreateMemberHandler)).Methods("POST")

	apiCreate.Handle("/reports", http.HandlerFunc(report.CreateReportHandler)).Methods("POST")
	apiCreate.Handle("/reports/{report_id}", api.Middleware(http.HandlerFunc(report.ReportByIDHandler))).Methods("GET")

	apiCreate.Handle("/stories", http.HandlerFunc(story.StoriesHandler)).Methods("GET")
	apiCreate.Handle("/stories", api.Middleware(http.HandlerFunc(story.CreateStoryHandler))).Methods("POST")
	apiCreate.Handle("/stories/{story_id}", http.HandlerFunc(story.StoryByIDHandler)).Methods("GET")
	apiCreate.Handle("/stories/{story_id}/like", api.Middleware(http.HandlerFunc(story.LikeStoryHandler))).Methods("POST")
	apiCreate.Handle("/stories/{story_id}/like", api.Middleware(http.HandlerFunc(story.UnlikeStoryHandler))).Methods("DELETE")
	apiCreate.Handle("/stories/{story_id}/view", api.Middleware(http.HandlerFunc(story.ViewStoryHandler))).Methods("POST")
	apiCreate.Handle("/stories/{story_id}/comments", http.HandlerFunc(story.CommentsHandler)).Methods("GET")
	apiCreate.Handle("/stories/{story_id}/comments", api.Middleware(http.HandlerFunc(story.CreateCommentHandler))).Methods("POST")

	apiCreate.Handle("/resources", http.HandlerFunc(resource.ResourcesHandler)).Methods("GET")
	apiCreate.Handle("/resources/{resource_id}", http.HandlerFunc(resource.ResourceByIDHandler)).Methods("GET")

	apiCreate.Handle("/support-services", http.HandlerFunc(service.SupportServicesHandler)).Methods("GET")
	apiCreate.Handle("/support-services/{service_id}", http.HandlerFunc(service.SupportServiceByIDHandler)).Methods("GET")

	apiCreate.Handle("/chat", http.HandlerFunc(chat.SupportChatHandler)).Methods("POST")

	apiCreate.Handle("/uploads/signature", api.Middleware(http.HandlerFunc(upload.GenerateSignature))).Methods("POST")

	// admin dashboard surface
	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/forgot-password", http.HandlerFunc(admin.AdminForgotPasswordHandler)).Methods("POST")
	apiCreate.Handle("/admin/reset-password", http.HandlerFunc(admin.AdminResetPasswordHandler)).Methods("POST")

	adminRoutes := apiCreate.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(api.AdminMiddleware)

	adminRoutes.Handle("/reports", http.HandlerFunc(report.ReportsHandler)).Methods("GET")
	adminRoutes.Handle("/reports/alerts", http.HandlerFunc(report.AlertsHandler)).Methods("GET")
	adminRoutes.Handle("/reports/{report_id}/resolve", http.HandlerFunc(report.ResolveReportHandler)).Methods("PUT")
	adminRoutes.Handle("/reports/{report_id}", http.HandlerFunc(report.DeleteReportHandler)).Methods("DELETE")

	adminRoutes.Handle("/members", http.HandlerFunc(member.MembersHandler)).Methods("GET")
	adminRoutes.Handle("/members/{member_id}", http.HandlerFunc(member.MemberByIDHandler)).Methods("GET")
	adminRoutes.Handle("/members/{member_id}/moderation", http.HandlerFunc(member.ModerationActionHandler)).Methods("POST")

	adminRoutes.Handle("/resources", http.HandlerFunc(resource.CreateResourceHandler)).Methods("POST")
	adminRoutes.Handle("/resources/{resource_id}", http.HandlerFunc(resource.UpdateResourceHandler)).Methods("PUT")
	adminRoutes.Handle("/resources/{resource_id}", http.HandlerFunc(resource.DeleteResourceHandler)).Methods("DELETE")
	adminRoutes.Handle("/uploads/document", http.HandlerFunc(upload.UploadDocumentHandler)).Methods("POST")

	adminRoutes.Handle("/support-services", http.HandlerFunc(service.CreateSupportServiceHandler)).Methods("POST")
	adminRoutes.Handle("/support-services/{service_id}", http.HandlerFunc(service.UpdateSupportServiceHandler)).Methods("PUT")
	adminRoutes.Handle("/support-services/{service_id}", http.HandlerFunc(service.DeleteSupportServiceHandler)).Methods("DELETE")

	adminRoutes.Handle("/accounts", http.HandlerFunc(admin.AdminsHandler)).Methods("GET")
	adminRoutes.Handle("/accounts", api.RequireRole(http.HandlerFunc(admin.CreateAdminHandler), models.RoleSuperAdmin)).Methods("POST")
	adminRoutes.Handle("/accounts/{admin_id}", api.RequireRole(http.HandlerFunc(admin.UpdateAdminHandler), models.RoleSuperAdmin)).Methods("PUT")
	adminRoutes.Handle("/accounts/{admin_id}/password", api.RequireRole(http.HandlerFunc(admin.SetAdminPasswordHandler), models.RoleSuperAdmin)).Methods("PUT")
	adminRoutes.Handle("/accounts/{admin_id}", api.RequireRole(http.HandlerFunc(admin.DeleteAdminHandler), models.RoleSuperAdmin)).Methods("DELETE")

	adminRoutes.Handle("/activity", http.HandlerFunc(activity.ActivityHandler)).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("safevoice-api has connected to the database")

	if err := databases.EnsureHeadAdmin(a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to bootstrap head admin")
		return err
	}

	// periodic jobs: counter rollups, urgent report digest, activity pruning
	a.Scheduler = scheduler.NewScheduler(
		databases.NewStoryLikeDatabase(a.dbHelper),
		databases.NewStoryViewDatabase(a.dbHelper),
		databases.NewReportDatabase(a.dbHelper),
		databases.NewActivityDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
