package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/config"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/domain"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/ledger"
	"github.com/sysu-ecnc-dev/queue-exclusion/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	ledger      *ledger.Ledger
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, ldg *ledger.Ledger, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		ledger:      ldg,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		// guest 用户只能访问 /my-info，其余接口都要求成员或管理员
		operators := []domain.Role{domain.RoleAdmin, domain.RoleMember}
		admins := []domain.Role{domain.RoleAdmin}

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole(admins)).Post("/", h.CreateUser)
			r.With(h.RequiredRole(operators)).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.With(h.RequiredRole(operators)).Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(admins)).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole(admins)).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole(admins)).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Use(h.RequiredRole(operators))
			r.With(h.myInfo).Post("/", h.AddApproval)
			r.Get("/", h.GetDailyApprovals)
			r.Get("/future", h.GetFutureApprovals)
			r.Get("/remaining", h.GetRemainingSlots)
			r.Delete("/{id}", h.RemoveApproval)
		})

		r.Route("/capacity", func(r chi.Router) {
			r.With(h.RequiredRole(operators)).Get("/daily-cap", h.GetDailyCap)
			r.With(h.RequiredRole(admins)).Put("/daily-cap", h.SetDailyCap)
			r.With(h.RequiredRole(operators)).Get("/hourly-limits", h.GetHourlyLimits)
			r.With(h.RequiredRole(admins)).Put("/hourly-limits/{period}", h.SetHourlyLimit)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequiredRole(operators))
			r.Get("/usage/slots", h.GetSlotUsage)
			r.Get("/usage/slots-with-limits", h.GetSlotUsageWithLimits)
			r.Get("/summary", h.GetSummary)
			r.Get("/history", h.GetHistory)
		})
	})
}
