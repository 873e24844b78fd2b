package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/passbi/transport_catalogue/internal/handler"
	"github.com/passbi/transport_catalogue/internal/models"
	"github.com/passbi/transport_catalogue/internal/reader"
	"golang.org/x/sync/singleflight"
)

const lockWait = 3 * time.Second

// CacheHitLocal is the fiber local telling whether a response was served from the cache
const CacheHitLocal = "cache_hit"

// ResponseCache stores serialized responses between requests
type ResponseCache interface {
	Key(kind string, parts ...string) string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	AcquireLock(ctx context.Context, key string) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
	WaitForLock(ctx context.Context, key string, maxWait time.Duration) ([]byte, error)
}

// HealthCheck reports the state of one dependency
type HealthCheck func(ctx context.Context) error

// HealthDetail reports informational stats of one dependency
type HealthDetail func(ctx context.Context) (map[string]interface{}, error)

// Server serves catalogue queries over HTTP
type Server struct {
	handler *handler.Handler
	cache   ResponseCache
	checks  map[string]HealthCheck
	details map[string]HealthDetail
	group   singleflight.Group
}

// Option configures a Server
type Option func(*Server)

// WithCache enables the response cache
func WithCache(c ResponseCache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithHealthCheck adds a named dependency check to /health
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// WithHealthDetail adds named stats to /health; failures never mark the service unhealthy
func WithHealthDetail(name string, detail HealthDetail) Option {
	return func(s *Server) {
		s.details[name] = detail
	}
}

// NewServer creates a server over a query handler
func NewServer(h *handler.Handler, opts ...Option) *Server {
	s := &Server{
		handler: h,
		checks:  make(map[string]HealthCheck),
		details: make(map[string]HealthDetail),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// busResponse is the body of /v1/buses/:name
type busResponse struct {
	Name string `json:"name"`
	models.BusStat
}

// stopResponse is the body of /v1/stops/:name
type stopResponse struct {
	Name  string   `json:"name"`
	Buses []string `json:"buses"`
}

// Bus handles GET /v1/buses/:name
func (s *Server) Bus(c *fiber.Ctx) error {
	name := c.Params("name")
	body, err := s.lookup(c, "bus", []string{name}, func() ([]byte, error) {
		stat, ok := s.handler.BusStat(name)
		if !ok {
			return nil, nil
		}
		return json.Marshal(busResponse{Name: name, BusStat: stat})
	})
	return sendJSON(c, body, err)
}

// Stop handles GET /v1/stops/:name
func (s *Server) Stop(c *fiber.Ctx) error {
	name := c.Params("name")
	body, err := s.lookup(c, "stop", []string{name}, func() ([]byte, error) {
		buses, ok := s.handler.StopBuses(name)
		if !ok {
			return nil, nil
		}
		return json.Marshal(stopResponse{Name: name, Buses: buses})
	})
	return sendJSON(c, body, err)
}

// Route handles GET /v1/route?from=&to=
func (s *Server) Route(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required parameters: from and to",
		})
	}

	body, err := s.lookup(c, "route", []string{from, to}, func() ([]byte, error) {
		route, err := s.handler.Route(from, to)
		if err != nil || route == nil {
			return nil, err
		}
		return json.Marshal(route)
	})
	return sendJSON(c, body, err)
}

// Map handles GET /v1/map
func (s *Server) Map(c *fiber.Ctx) error {
	body, err := s.lookup(c, "map", nil, func() ([]byte, error) {
		doc, err := s.handler.RenderMap()
		if err != nil {
			return nil, err
		}
		return []byte(doc.String()), nil
	})
	if err != nil {
		return toFiberError(err)
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(body)
}

// Stat handles POST /v1/stat with either one stat request object or an array of them
func (s *Server) Stat(c *fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) > 0 && body[0] == '{' {
		req, err := reader.DecodeStatRequest(body)
		if err != nil {
			return badRequest(c, err)
		}
		node, err := reader.Respond(s.handler, req)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(node)
	}

	requests, err := reader.DecodeStatRequests(body)
	if err != nil {
		return badRequest(c, err)
	}

	node, err := reader.ProcessRequests(s.handler, requests)
	if err != nil {
		return toFiberError(err)
	}
	return c.JSON(node)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// Health handles GET /health
func (s *Server) Health(c *fiber.Ctx) error {
	ctx := c.UserContext()

	checks := fiber.Map{}
	status := "healthy"
	httpStatus := fiber.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "unhealthy"
			httpStatus = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	cat := s.handler.Catalogue()
	body := fiber.Map{
		"status": status,
		"checks": checks,
		"network": fiber.Map{
			"stops":   cat.StopCount(),
			"buses":   cat.BusCount(),
			"routing": s.handler.Router() != nil,
		},
	}

	if len(s.details) > 0 {
		details := fiber.Map{}
		for name, detail := range s.details {
			stats, err := detail(ctx)
			if err != nil {
				details[name] = fiber.Map{"error": err.Error()}
				continue
			}
			details[name] = stats
		}
		body["details"] = details
	}

	return c.Status(httpStatus).JSON(body)
}

// lookupResult is a serialized answer and whether it came from the cache
type lookupResult struct {
	body []byte
	hit  bool
}

// lookup returns the serialized answer of a query, or nil when there is none.
// Concurrent identical queries share one computation; with a cache, so do replicas.
func (s *Server) lookup(c *fiber.Ctx, kind string, parts []string, compute func() ([]byte, error)) ([]byte, error) {
	ctx := c.UserContext()
	flightKey := kind + "\x00" + strings.Join(parts, "\x00")
	v, err, _ := s.group.Do(flightKey, func() (any, error) {
		if s.cache == nil {
			body, err := compute()
			return lookupResult{body: body}, err
		}
		return s.cachedCompute(ctx, s.cache.Key(kind, parts...), compute)
	})
	if err != nil {
		return nil, err
	}
	result, _ := v.(lookupResult)
	c.Locals(CacheHitLocal, result.hit)
	return result.body, nil
}

func (s *Server) cachedCompute(ctx context.Context, key string, compute func() ([]byte, error)) (lookupResult, error) {
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
		return lookupResult{body: cached, hit: true}, nil
	} else if err != nil {
		log.Printf("Cache read failed for %s: %v", key, err)
	}

	acquired, err := s.cache.AcquireLock(ctx, key)
	if err != nil {
		log.Printf("Failed to acquire lock: %v", err)
	} else if !acquired {
		cached, err := s.cache.WaitForLock(ctx, key, lockWait)
		if err == nil && cached != nil {
			return lookupResult{body: cached, hit: true}, nil
		}
	}

	defer func() {
		if acquired {
			if err := s.cache.ReleaseLock(ctx, key); err != nil {
				log.Printf("Failed to release lock: %v", err)
			}
		}
	}()

	body, err := compute()
	if err != nil || body == nil {
		return lookupResult{body: body}, err
	}

	if err := s.cache.Set(ctx, key, body); err != nil {
		log.Printf("Failed to cache response: %v", err)
	}
	return lookupResult{body: body}, nil
}

func sendJSON(c *fiber.Ctx, body []byte, err error) error {
	if err != nil {
		return toFiberError(err)
	}
	if body == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// toFiberError maps disabled features to 501 and everything else to 500
func toFiberError(err error) error {
	if errors.Is(err, handler.ErrRoutingDisabled) || errors.Is(err, handler.ErrRenderingDisabled) {
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	}
	return err
}

// ErrorHandler renders handler errors as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
