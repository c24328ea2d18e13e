package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/flexline/gymarena/internal/bracket"
	"github.com/flexline/gymarena/internal/db"
	"github.com/flexline/gymarena/internal/gamify"
	"github.com/flexline/gymarena/internal/httputil"
	"github.com/flexline/gymarena/internal/middleware"
	"github.com/flexline/gymarena/internal/service"
	"github.com/flexline/gymarena/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth/gothic"
	"golang.org/x/time/rate"
)

// writeBracketError maps the engine's error taxonomy onto HTTP codes.
func writeBracketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		httputil.NotFound(w, "Not found", err)
	case errors.Is(err, bracket.ErrNotOrganizer):
		httputil.Forbidden(w, err.Error())
	case errors.Is(err, bracket.ErrTournamentFull),
		errors.Is(err, bracket.ErrAlreadyJoined),
		errors.Is(err, bracket.ErrMatchComplete):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, bracket.ErrInvalidBracketSize),
		errors.Is(err, bracket.ErrTournamentNotOpen),
		errors.Is(err, bracket.ErrTournamentNotActive),
		errors.Is(err, bracket.ErrBracketNotFull),
		errors.Is(err, bracket.ErrMatchNotReady),
		errors.Is(err, bracket.ErrIllegalWinner):
		httputil.BadRequest(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, "Unexpected error", err)
	}
}

func newRouter(sessionManager *scs.SessionManager) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionManager, store.NewUserStore(db.GetDB())))
		r.Use(middleware.RateLimit(rate.Limit(5), 10))

		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			user := middleware.GetAuthenticatedUser(r.Context())
			if user == nil {
				httputil.NotFound(w, "User not found", nil)
				return
			}
			into, needed := gamify.ProgressToNext(user.XP)
			httputil.JSON(w, http.StatusOK, map[string]any{
				"id":         user.ID,
				"username":   user.Username,
				"avatar_url": user.AvatarURL,
				"xp":         user.XP,
				"level":      gamify.LevelForXP(user.XP),
				"level_xp":   into,
				"next_level": needed,
			})
		})

		r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			tournamentService := newTournamentService(dbConn)

			tournaments, err := tournamentService.ListTournaments(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to list tournaments", err)
				return
			}
			httputil.JSON(w, http.StatusOK, tournaments)
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			tournamentService := newTournamentService(dbConn)

			var body struct {
				Name            string    `json:"name"`
				Description     string    `json:"description"`
				StartsAt        time.Time `json:"starts_at"`
				MaxParticipants int       `json:"max_participants"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			if body.Name == "" || len(body.Name) > 100 {
				httputil.BadRequest(w, "Tournament name must be 1-100 characters", nil)
				return
			}

			id, err := tournamentService.CreateTournament(r.Context(), service.CreateTournamentInput{
				Name:            body.Name,
				Description:     body.Description,
				StartsAt:        body.StartsAt,
				MaxParticipants: body.MaxParticipants,
			})
			if err != nil {
				writeBracketError(w, err)
				return
			}
			httputil.JSON(w, http.StatusCreated, map[string]any{"id": id})
		})

		r.Get("/tournaments/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			tournamentService := newTournamentService(dbConn)

			data, err := tournamentService.GetBracket(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Tournament not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to get bracket", err)
				return
			}
			httputil.JSON(w, http.StatusOK, data)
		})

		r.Post("/tournaments/{id}/join", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			tournamentService := newTournamentService(dbConn)

			participant, err := tournamentService.JoinTournament(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeBracketError(w, err)
				return
			}
			httputil.JSON(w, http.StatusCreated, participant)
		})

		r.Post("/tournaments/{id}/start", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			tournamentService := newTournamentService(dbConn)

			if err := tournamentService.StartTournament(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeBracketError(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]any{"status": bracket.TournamentActive})
		})

		r.Get("/tournaments/{id}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			predictionService := service.NewPredictionService(dbConn, store.NewTournamentStore(dbConn), store.NewPredictionStore(dbConn))

			rows, err := predictionService.Leaderboard(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.InternalServerError(w, "Failed to get leaderboard", err)
				return
			}
			httputil.JSON(w, http.StatusOK, rows)
		})

		r.Post("/matches/{id}/winner", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			matchService := service.NewMatchService(dbConn, store.NewTournamentStore(dbConn), store.NewPredictionStore(dbConn), store.NewUserStore(dbConn))

			matchID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}

			var body struct {
				WinnerID uuid.UUID `json:"winner_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}

			match, err := matchService.RecordWinner(r.Context(), matchID, body.WinnerID)
			if err != nil {
				writeBracketError(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, match)
		})

		r.Put("/matches/{id}/prediction", func(w http.ResponseWriter, r *http.Request) {
			dbConn := db.GetDB()
			predictionService := service.NewPredictionService(dbConn, store.NewTournamentStore(dbConn), store.NewPredictionStore(dbConn))

			matchID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}

			var body struct {
				PredictedWinnerID uuid.UUID `json:"predicted_winner_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}

			prediction, err := predictionService.RecordPrediction(r.Context(), matchID, body.PredictedWinnerID)
			if err != nil {
				writeBracketError(w, err)
				return
			}
			httputil.JSON(w, http.StatusOK, prediction)
		})
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		dbConn := db.GetDB()
		userService := service.NewUserService(dbConn, store.NewUserStore(dbConn))
		user, err := userService.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())

		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		dbConn := db.GetDB()
		userService := service.NewUserService(dbConn, store.NewUserStore(dbConn))

		user, err := userService.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		sessionManager.Put(r.Context(), "userID", user.ID.String())
		httputil.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "username": user.Username})
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		sessionManager.Destroy(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func newTournamentService(dbConn *sqlx.DB) *service.TournamentService {
	return service.NewTournamentService(dbConn, store.NewTournamentStore(dbConn), store.NewUserStore(dbConn), store.NewPredictionStore(dbConn))
}
