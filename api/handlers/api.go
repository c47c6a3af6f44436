package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/victim-dao-api/api"
	"github.com/linesmerrill/victim-dao-api/api/scheduler"
	"github.com/linesmerrill/victim-dao-api/config"
	"github.com/linesmerrill/victim-dao-api/databases"
	"github.com/linesmerrill/victim-dao-api/mailer"
	"github.com/linesmerrill/victim-dao-api/payments"
	"github.com/linesmerrill/victim-dao-api/uploads"
)

// DefaultRequestTimeout bounds /api requests when none is configured
const DefaultRequestTimeout = 30 * time.Second

// Notifier is told after every successful write so connected clients re-query
type Notifier interface {
	Broadcast()
}

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Hub       *UpdateHub
	Metrics   *api.MetricsCollector
	Mailer    mailer.Mailer
	Uploader  uploads.Uploader
	Payments  payments.CheckoutCreator
	dbHelper  databases.DatabaseHelper
	client    databases.ClientHelper
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	a.setDefaults()

	userDB := databases.NewUserDatabase(a.dbHelper)
	metaDB := databases.NewUserMetaDatabase(a.dbHelper, a.Config.DefaultVotesAllowed)
	activityDB := databases.NewActivityDatabase(a.dbHelper)
	joinDB := databases.NewJoinApplicationDatabase(a.dbHelper)

	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: userDB}
	m.SetupGoGuardian()

	ja := JoinApplication{DB: joinDB, ActDB: activityDB, Mail: a.Mailer, Hub: a.Hub}
	auth := Auth{UDB: userDB, MDB: metaDB, JDB: joinDB, ActDB: activityDB, Hub: a.Hub}
	admin := Admin{ADB: databases.NewAdminDatabase(a.dbHelper), JWTSecret: []byte(a.Config.JWTSecret)}
	u := User{UDB: userDB, MDB: metaDB, ActDB: activityDB, Hub: a.Hub}
	rc := Receipt{
		DB:       databases.NewReceiptDatabase(a.dbHelper),
		MDB:      metaDB,
		ActDB:    activityDB,
		Mail:     a.Mailer,
		Uploader: a.Uploader,
		Payments: a.Payments,
		Hub:      a.Hub,
		BaseURL:  a.Config.BaseURL,
	}
	v := Vote{DB: databases.NewVoteDatabase(a.dbHelper), MDB: metaDB, ActDB: activityDB, Hub: a.Hub}
	cr := ContributionRound{DB: databases.NewContributionRoundDatabase(a.dbHelper), ActDB: activityDB, Hub: a.Hub}
	w := Wallet{DB: databases.NewWalletDatabase(a.dbHelper), ActDB: activityDB, Uploader: a.Uploader, Hub: a.Hub}
	act := Activity{DB: activityDB}
	mt := Metrics{Collector: a.Metrics}

	r := mux.NewRouter()

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/api/votes/health", api.ServiceHealthHandler("votes")).Methods("GET")
	r.HandleFunc("/api/admin/health", api.ServiceHealthHandler("admin")).Methods("GET")

	r.Handle("/ws/updates", a.Hub)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.MetricsMiddleware(a.Metrics))
	apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))

	apiCreate.Handle("/join-applications", http.HandlerFunc(ja.SubmitJoinApplicationHandler)).Methods("POST")
	apiCreate.Handle("/join-applications/eligibility", http.HandlerFunc(ja.CheckEligibilityHandler)).Methods("POST")

	apiCreate.Handle("/auth/register", http.HandlerFunc(auth.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/leaderboard", http.HandlerFunc(u.LeaderboardHandler)).Methods("GET")
	apiCreate.Handle("/wallets", http.HandlerFunc(w.ListActiveWalletsHandler)).Methods("GET")
	apiCreate.Handle("/contribution-timer", http.HandlerFunc(cr.CurrentTimerHandler)).Methods("GET")

	apiCreate.Handle("/me", api.Middleware(http.HandlerFunc(u.MeHandler))).Methods("GET")
	apiCreate.Handle("/activity/mine", api.Middleware(http.HandlerFunc(act.MyActivityHandler))).Methods("GET")

	apiCreate.Handle("/votes", api.Middleware(http.HandlerFunc(v.ListVotesHandler))).Methods("GET")
	apiCreate.Handle("/votes/{vote_id}", api.Middleware(http.HandlerFunc(v.VoteHandler))).Methods("GET")
	apiCreate.Handle("/votes/{vote_id}/submit", api.Middleware(http.HandlerFunc(v.SubmitVoteHandler))).Methods("POST")

	apiCreate.Handle("/receipts", api.Middleware(http.HandlerFunc(rc.CreateReceiptHandler))).Methods("POST")
	apiCreate.Handle("/receipts/mine", api.Middleware(http.HandlerFunc(rc.MyReceiptsHandler))).Methods("GET")
	apiCreate.Handle("/receipts/{receipt_id}/proof", api.Middleware(http.HandlerFunc(rc.UploadReceiptProofHandler))).Methods("POST")
	apiCreate.Handle("/contributions/checkout-session", api.Middleware(http.HandlerFunc(rc.CreateCheckoutSessionHandler))).Methods("POST")

	// admin login stays public, everything else under /admin needs an admin JWT
	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")

	adminRouter := apiCreate.PathPrefix("/admin").Subrouter()
	adminRouter.Use(api.AdminMiddleware([]byte(a.Config.JWTSecret)))

	adminRouter.Handle("/me", http.HandlerFunc(admin.AdminMeHandler)).Methods("GET")

	adminRouter.Handle("/users", http.HandlerFunc(u.ListUsersHandler)).Methods("GET")
	adminRouter.Handle("/users/{email}/points", http.HandlerFunc(u.AdjustPointsHandler)).Methods("PUT")
	adminRouter.Handle("/users/{email}/voting-rights", http.HandlerFunc(u.SetVotingRightsHandler)).Methods("PUT")

	adminRouter.Handle("/receipts", http.HandlerFunc(rc.ListReceiptsHandler)).Methods("GET")
	adminRouter.Handle("/receipts/{receipt_id}/status", http.HandlerFunc(rc.UpdateReceiptStatusHandler)).Methods("PUT")

	adminRouter.Handle("/wallets", http.HandlerFunc(w.ListAllWalletsHandler)).Methods("GET")
	adminRouter.Handle("/wallets", http.HandlerFunc(w.CreateWalletHandler)).Methods("POST")
	adminRouter.Handle("/wallets/{wallet_id}", http.HandlerFunc(w.UpdateWalletHandler)).Methods("PUT")
	adminRouter.Handle("/wallets/{wallet_id}", http.HandlerFunc(w.DeleteWalletHandler)).Methods("DELETE")
	adminRouter.Handle("/wallets/{wallet_id}/toggle", http.HandlerFunc(w.ToggleWalletHandler)).Methods("PATCH")
	adminRouter.Handle("/wallets/{wallet_id}/qr-code", http.HandlerFunc(w.UploadWalletQRCodeHandler)).Methods("POST")

	adminRouter.Handle("/votes", http.HandlerFunc(v.ListAllVotesHandler)).Methods("GET")
	adminRouter.Handle("/votes", http.HandlerFunc(v.CreateVoteHandler)).Methods("POST")
	adminRouter.Handle("/votes/{vote_id}", http.HandlerFunc(v.UpdateVoteHandler)).Methods("PUT")
	adminRouter.Handle("/votes/{vote_id}", http.HandlerFunc(v.DeleteVoteHandler)).Methods("DELETE")
	adminRouter.Handle("/votes/{vote_id}/status", http.HandlerFunc(v.SetVoteStatusHandler)).Methods("POST")

	adminRouter.Handle("/contribution-rounds", http.HandlerFunc(cr.ListRoundsHandler)).Methods("GET")
	adminRouter.Handle("/contribution-rounds", http.HandlerFunc(cr.CreateRoundHandler)).Methods("POST")
	adminRouter.Handle("/contribution-rounds/{round_id}", http.HandlerFunc(cr.DeleteRoundHandler)).Methods("DELETE")
	adminRouter.Handle("/contribution-rounds/{round_id}/start", http.HandlerFunc(cr.StartRoundHandler)).Methods("POST")
	adminRouter.Handle("/contribution-rounds/{round_id}/resume", http.HandlerFunc(cr.StartRoundHandler)).Methods("POST")
	adminRouter.Handle("/contribution-rounds/{round_id}/pause", http.HandlerFunc(cr.PauseRoundHandler)).Methods("POST")
	adminRouter.Handle("/contribution-rounds/{round_id}/stop", http.HandlerFunc(cr.StopRoundHandler)).Methods("POST")

	adminRouter.Handle("/join-applications", http.HandlerFunc(ja.ListJoinApplicationsHandler)).Methods("GET")
	adminRouter.Handle("/activity", http.HandlerFunc(act.ListActivityHandler)).Methods("GET")
	adminRouter.Handle("/metrics", http.HandlerFunc(mt.MetricsHandler)).Methods("GET")

	return r
}

// Handler wraps the router with CORS so preflight requests are answered
// before route matching
func (a *App) Handler() http.Handler {
	origins := a.Config.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(a.Router)
}

func (a *App) setDefaults() {
	if a.Hub == nil {
		a.Hub = NewUpdateHub()
	}
	if a.Metrics == nil {
		a.Metrics = api.NewMetricsCollector()
	}
	if a.Mailer == nil {
		a.Mailer = mailer.LogMailer{}
	}
	if a.Uploader == nil {
		a.Uploader, _ = uploads.New(config.CloudinaryConfig{})
	}
	if a.Payments == nil {
		a.Payments = payments.New("")
	}
	if a.Config.RequestTimeout <= 0 {
		a.Config.RequestTimeout = DefaultRequestTimeout
	}
	if a.Config.DefaultVotesAllowed <= 0 {
		a.Config.DefaultVotesAllowed = 5
	}
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		zap.S().Errorw("invalid configuration", "error", err)
		return err
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect(ctx)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("victim-dao-api has connected to the database")

	if err := databases.EnsureIndexes(ctx, a.dbHelper); err != nil {
		zap.S().Warnw("failed to ensure indexes", "error", err)
	}
	if err := databases.EnsureHeadAdmin(ctx, databases.NewAdminDatabase(a.dbHelper), a.Config.HeadAdminEmail, a.Config.HeadAdminPassword); err != nil {
		zap.S().Errorw("failed to bootstrap head admin", "error", err)
	}

	a.Mailer = mailer.New(a.Config.Mail)
	a.Payments = payments.New(a.Config.StripeSecretKey)
	a.Uploader, err = uploads.New(a.Config.Cloudinary)
	if err != nil {
		zap.S().Errorw("failed to configure uploads", "error", err)
		return err
	}

	// initialize api router
	a.initializeRoutes()

	a.scheduler = scheduler.NewScheduler(
		databases.NewVoteDatabase(a.dbHelper),
		databases.NewContributionRoundDatabase(a.dbHelper),
		a.Hub,
	)
	a.scheduler.Start()
	return nil
}

// Shutdown stops background work and closes the database connection
func (a *App) Shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt reads a positive integer query parameter, clamped to max when max > 0
func queryInt(r *http.Request, key string, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// adminEmail names the admin behind a request for the activity feed
func adminEmail(r *http.Request) string {
	if a, ok := api.AdminFromContext(r.Context()); ok {
		return a.Email
	}
	return ""
}
