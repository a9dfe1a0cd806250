package diagnostics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/di"
	apperrors "github.com/kbukum/lambdacontainer/errors"
	"github.com/kbukum/lambdacontainer/observability"
	"github.com/kbukum/lambdacontainer/util"
	"github.com/kbukum/lambdacontainer/version"
)

// HealthChecker returns the health of the application's components.
type HealthChecker func(ctx context.Context) []component.Health

// Registrations lists the container's registrations in registration order.
// The optional contract query parameter keeps those whose contract matches
// exactly; an unknown contract answers 404.
func Registrations(c *di.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		regs := c.Registrations()
		if contract := ctx.Query("contract"); contract != "" {
			filtered := util.Filter(regs, func(r di.RegistrationInfo) bool { return r.Contract == contract })
			if len(filtered) == 0 {
				respondWithError(ctx, apperrors.UnregisteredContract(contract, ctx.Query("name")))
				return
			}
			regs = filtered
		}
		ctx.JSON(http.StatusOK, gin.H{
			"container_id":  c.ID(),
			"count":         len(regs),
			"registrations": regs,
		})
	}
}

// Stats reports registration counts by lifetime and source kind.
func Stats(c *di.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Stats())
	}
}

// Health aggregates the container's health with the components reported by
// checker. A down component answers 503.
func Health(service string, c *di.Container, checker HealthChecker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sh := observability.NewServiceHealth(service, version.GetShortVersion())
		sh.AddComponent(observability.ContainerHealth("container", c))
		if checker != nil {
			for _, h := range checker(ctx.Request.Context()) {
				sh.AddComponent(componentHealth(h))
			}
		}

		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, gin.H{
			"service":    sh.Service,
			"status":     sh.Status,
			"version":    sh.Version,
			"components": sh.Components,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Version reports build version information.
func Version() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, version.GetVersionInfo())
	}
}

func componentHealth(h component.Health) observability.Health {
	out := observability.Health{Name: h.Name, Message: h.Message}
	switch h.Status {
	case component.StatusHealthy:
		out.Status = observability.HealthStatusUp
	case component.StatusDegraded:
		out.Status = observability.HealthStatusDegraded
	default:
		out.Status = observability.HealthStatusDown
	}
	return out
}

// respondWithError writes an AppError with its own status; anything else
// becomes a 500.
func respondWithError(ctx *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		ctx.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	ctx.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// Mount registers the diagnostics routes under basePath.
func Mount(r gin.IRouter, basePath, service string, c *di.Container, checker HealthChecker) {
	g := r.Group(strings.TrimSuffix(basePath, "/"))
	g.GET("/registrations", Registrations(c))
	g.GET("/stats", Stats(c))
	g.GET("/health", Health(service, c, checker))
	g.GET("/version", Version())
}
