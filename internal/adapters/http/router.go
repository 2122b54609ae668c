package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware gives every browser a stable id cookie; it doubles
// as the connection id, so a reconnecting tab keeps its seat.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func connID(c *gin.Context) domain.ConnID {
	return domain.ConnID(c.GetString("client_token"))
}

func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch domain.CodeOf(err) {
	case domain.CodeRoomNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidParameter:
		return http.StatusBadRequest
	case domain.CodeInsufficientPermissions, domain.CodeBlocked:
		return http.StatusForbidden
	case domain.CodeInvalidPassword:
		return http.StatusUnauthorized
	case domain.CodeIDSpaceExhausted:
		return http.StatusServiceUnavailable
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeMeetingLocked, domain.CodeAlreadyPresent:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"code": domain.CodeOf(err), "message": err.Error()})
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MeetSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": o.Rooms.Len()})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("conn", string(connID(c))).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/me", func(c *gin.Context) {
		id := connID(c)
		c.JSON(http.StatusOK, gin.H{"connectionId": id, "displayName": o.Registry.DisplayName(id)})
	})
	api.PUT("/me", func(c *gin.Context) {
		var body struct {
			DisplayName string `json:"displayName"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWith(c, domain.Errorf(domain.CodeInvalidParameter, "bad body"))
			return
		}
		name, err := domain.ValidateDisplayName(body.DisplayName)
		if err != nil {
			abortWith(c, domain.Errorf(domain.CodeInvalidParameter, "%v", err))
			return
		}
		sess := sessions.Default(c)
		sess.Set(signal.SessionDisplayName, name)
		if err := sess.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
			abortWith(c, err)
			return
		}
		o.Registry.SetDisplayName(connID(c), name)
		c.JSON(http.StatusOK, gin.H{"connectionId": connID(c), "displayName": name})
	})

	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": o.ICE.FetchICEServers()})
	})

	rooms := api.Group("/rooms")
	rooms.POST("", func(c *gin.Context) {
		var req orch.CreateRoomRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				abortWith(c, domain.Errorf(domain.CodeInvalidParameter, "bad body"))
				return
			}
		}
		sum, err := o.CreateRoom(connID(c), req)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusCreated, sum)
	})
	rooms.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.ListRooms(c.Request.Context())})
	})
	rooms.GET("/:id", func(c *gin.Context) {
		sum, err := o.RoomSummary(c.Request.Context(), domain.RoomID(c.Param("id")))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	})
	rooms.GET("/:id/audit", func(c *gin.Context) {
		export, err := o.AuditFor(c.Request.Context(), domain.RoomID(c.Param("id")), connID(c))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, export)
	})

	return r
}
