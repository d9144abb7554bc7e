package handlers

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/focoapp/foco-backend/database"
	"github.com/focoapp/foco-backend/database/models"
	"github.com/focoapp/foco-backend/database/repositories"
	"github.com/focoapp/foco-backend/services"
	"github.com/focoapp/foco-backend/utils"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	DB           *database.DB
	Repos        *repositories.Repositories
	Scoring      *services.ScoringService
	Achievements *services.AchievementService
	Ledger       *services.LedgerService
	Search       *services.BadgeSearchService
	Spaces       *services.SpacesService
	Version      string
	Commit       string
}

// sendServiceError maps service-layer errors onto HTTP responses.
func sendServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return utils.SendBadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrInsufficientFunds):
		return utils.SendConflict(c, "Insufficient balance", nil)
	default:
		slog.Error(fallback, slog.String("error", err.Error()))
		return utils.SendInternalServerError(c, fallback)
	}
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := webApp.DB.Ping(c.Context()); err != nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "UNHEALTHY", "Database unreachable", nil)
		}
		return utils.SendSuccess(c, fiber.Map{
			"status":  "healthy",
			"version": webApp.Version,
			"commit":  webApp.Commit,
		}, "Health check successful")
	}
}

// AwardXP scores one completed activity and returns the resulting XP,
// streak and level.
func AwardXP(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req services.AwardRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		result, err := webApp.Scoring.Award(ctx, req)
		if err != nil {
			return sendServiceError(c, err, "Failed to award XP")
		}
		return utils.SendSuccess(c, result, "XP awarded")
	}
}

// CheckBadges runs the achievement evaluator for a user and returns
// any newly unlocked badges.
func CheckBadges(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		result, err := webApp.Achievements.Evaluate(ctx, req.UserID)
		if err != nil {
			return sendServiceError(c, err, "Failed to evaluate badges")
		}
		return utils.SendSuccess(c, result, "Badges evaluated")
	}
}

// badgeView is a catalog badge plus its resolved icon URL.
type badgeView struct {
	*models.Badge
	IconURL string `json:"icon_url,omitempty"`
}

func (webApp *WebApp) badgeViews(badges []*models.Badge) []badgeView {
	views := make([]badgeView, 0, len(badges))
	for _, b := range badges {
		v := badgeView{Badge: b}
		if webApp.Spaces != nil {
			v.IconURL = webApp.Spaces.IconURL(b.IconPath)
		}
		views = append(views, v)
	}
	return views
}

func BadgesList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		badges, err := webApp.Repos.Badge.GetAll(c.Context())
		if err != nil {
			slog.Error("Failed to list badges", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list badges")
		}
		return utils.SendSuccess(c, webApp.badgeViews(badges), "Badge catalog retrieved")
	}
}

func BadgesSearch(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		limit := c.QueryInt("limit", 20)

		badges, err := webApp.Search.Search(c.Context(), query, limit)
		if err != nil {
			slog.Error("Failed to search badges", slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to search badges")
		}
		return utils.SendSuccess(c, webApp.badgeViews(badges), "Badge search results")
	}
}

func UserBadges(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID == "" {
			return utils.SendBadRequest(c, "Missing user id", nil)
		}

		earned, err := webApp.Repos.UserBadge.GetAllByUserID(c.Context(), userID)
		if err != nil {
			slog.Error("Failed to get user badges",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to get user badges")
		}
		return utils.SendSuccess(c, earned, "User badges retrieved")
	}
}

// UserProfile returns the user's XP profile alongside today's activity
// counters and current streak.
func UserProfile(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		userID := c.Params("id")
		if userID == "" {
			return utils.SendBadRequest(c, "Missing user id", nil)
		}

		profile, err := webApp.Repos.Profile.Get(ctx, userID)
		if err != nil {
			slog.Error("Failed to get profile",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to get profile")
		}
		if profile == nil {
			profile = &models.UserProfile{UserID: userID, Level: 1}
		}

		today, err := webApp.Repos.Stats.GetByDay(ctx, userID, models.DayOf(time.Now()))
		if err != nil {
			slog.Error("Failed to get daily stat",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to get profile")
		}

		streak := 0
		if today != nil {
			streak = today.Streak
		}

		return utils.SendSuccess(c, fiber.Map{
			"profile": profile,
			"today":   today,
			"streak":  streak,
		}, "Profile retrieved")
	}
}

func UserLedger(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID == "" {
			return utils.SendBadRequest(c, "Missing user id", nil)
		}
		limit := c.QueryInt("limit", 50)

		entries, err := webApp.Ledger.History(c.Context(), userID, limit)
		if err != nil {
			return sendServiceError(c, err, "Failed to get ledger")
		}
		return utils.SendSuccess(c, entries, "Ledger retrieved")
	}
}

// UserLedgerReplay re-derives the user's net XP balance from the
// ledger alone, for auditing against the profile counters.
func UserLedgerReplay(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if userID == "" {
			return utils.SendBadRequest(c, "Missing user id", nil)
		}

		total, err := webApp.Ledger.ReplayTotal(c.Context(), userID)
		if err != nil {
			return sendServiceError(c, err, "Failed to replay ledger")
		}
		return utils.SendSuccess(c, fiber.Map{
			"user_id": userID,
			"balance": total,
		}, "Ledger replayed")
	}
}

func RewardsSpend(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var req struct {
			UserID string                 `json:"user_id"`
			Amount int                    `json:"amount"`
			Meta   map[string]interface{} `json:"meta"`
		}
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", map[string]string{
				"error": err.Error(),
			})
		}

		balance, err := webApp.Ledger.Spend(ctx, req.UserID, req.Amount, req.Meta)
		if err != nil {
			return sendServiceError(c, err, "Failed to record spend")
		}
		return utils.SendSuccess(c, fiber.Map{
			"balance": balance,
		}, "Spend recorded")
	}
}

// BadgeIconUpload stores a badge icon on Spaces and records its path
// on the catalog row.
func BadgeIconUpload(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		slug := c.Params("slug")
		if slug == "" {
			return utils.SendBadRequest(c, "Missing badge slug", nil)
		}
		if webApp.Spaces == nil {
			return utils.SendError(c, fiber.StatusNotImplemented, "NOT_CONFIGURED", "Icon storage is not configured", nil)
		}

		badge, err := webApp.Repos.Badge.GetBySlug(ctx, slug)
		if err != nil {
			slog.Error("Failed to get badge",
				slog.String("slug", slug),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to get badge")
		}
		if badge == nil {
			return utils.SendNotFound(c, "Badge not found")
		}

		file, err := c.FormFile("icon")
		if err != nil {
			return utils.SendBadRequest(c, "Missing icon file", nil)
		}

		const maxIconSize = 2 * 1024 * 1024
		if file.Size > maxIconSize {
			return utils.SendBadRequest(c, "Icon too large (max 2MB)", map[string]string{
				"size": strconv.FormatInt(file.Size, 10),
			})
		}

		contentType := file.Header.Get("Content-Type")
		allowed := map[string]bool{
			"image/png":  true,
			"image/jpeg": true,
			"image/webp": true,
		}
		if !allowed[contentType] {
			return utils.SendBadRequest(c, "Invalid icon type (png, jpeg or webp)", map[string]string{
				"content_type": contentType,
			})
		}

		src, err := file.Open()
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to read icon")
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to read icon")
		}

		key, err := webApp.Spaces.UploadBadgeIcon(ctx, slug, data, contentType)
		if err != nil {
			slog.Error("Failed to upload badge icon",
				slog.String("slug", slug),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to upload icon")
		}

		if err := webApp.Repos.Badge.SetIconPath(ctx, slug, key); err != nil {
			slog.Error("Failed to record badge icon",
				slog.String("slug", slug),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to record icon")
		}

		return utils.SendSuccess(c, fiber.Map{
			"slug":     slug,
			"icon_url": webApp.Spaces.IconURL(key),
		}, "Icon uploaded")
	}
}
