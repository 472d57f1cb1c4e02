package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kotrzina/knue-meals/pkg/extract"
	"github.com/kotrzina/knue-meals/pkg/fetch"
	"github.com/kotrzina/knue-meals/pkg/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Service answers menu lookups. It keeps no per-request state and is safe for
// concurrent use; every call fetches and parses the page again.
type Service struct {
	catalog  *Catalog
	fetcher  fetch.Fetcher
	monitor  *prometheus.Monitor
	logger   *logrus.Logger
	validate *validator.Validate
}

func NewService(catalog *Catalog, fetcher fetch.Fetcher, monitor *prometheus.Monitor, logger *logrus.Logger) *Service {
	return &Service{
		catalog:  catalog,
		fetcher:  fetcher,
		monitor:  monitor,
		logger:   logger,
		validate: newValidator(),
	}
}

// Catalog returns the sources the service was built with.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// DateMenu returns the menu of the date addressed cafeteria for one day.
// When req.Meal is set, callers usually only render that slot, but the
// schedule still carries all of them.
func (s *Service) DateMenu(ctx context.Context, req DateRequest) (*Schedule, error) {
	src := s.catalog.Sado

	sched, err := s.dateMenu(ctx, src, req)
	s.observe(src.ID, sched, err)
	return sched, err
}

func (s *Service) dateMenu(ctx context.Context, src *DateSource, req DateRequest) (*Schedule, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	date, ok := extract.CalendarDate(req.Year, req.Month, req.Day)
	if !ok {
		return nil, invalidInput("invalid date: %04d-%02d-%02d", req.Year, req.Month, req.Day)
	}

	target, err := src.URLFor(date)
	if err != nil {
		return nil, extraction("build url", err)
	}

	root, err := s.load(ctx, src.Source, target)
	if err != nil {
		return nil, err
	}

	result := src.Extract(root)
	for _, slot := range result.Relaxed {
		s.monitor.SelectorFallbacks.WithLabelValues(src.ID, slot).Inc()
		s.logger.WithFields(logrus.Fields{
			"source": src.ID,
			"slot":   slot,
		}).Debug("Relaxed selector matched")
	}

	sched := newSchedule(src.Source, src.MealNames())
	sched.Date = &date
	for slot, lines := range result.Meals {
		sched.set(slot, lines)
	}

	return sched, nil
}

// WeekdayMenu returns the menu of the weekday addressed cafeteria. A schedule
// without a single item is returned with a Note instead of an error.
func (s *Service) WeekdayMenu(ctx context.Context, req WeekdayRequest) (*Schedule, error) {
	src := s.catalog.Staff

	sched, err := s.weekdayMenu(ctx, src, req)
	s.observe(src.ID, sched, err)
	return sched, err
}

func (s *Service) weekdayMenu(ctx context.Context, src *WeekdaySource, req WeekdayRequest) (*Schedule, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	root, err := s.load(ctx, src.Source, src.URL)
	if err != nil {
		return nil, err
	}

	result, err := src.Extract(root, req.Day)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"source": src.ID,
			"day":    req.Day,
		}).Warnf("Could not resolve menu section: %v", err)
		return nil, extraction("resolve section", err)
	}

	if result.TableFallback {
		s.monitor.SelectorFallbacks.WithLabelValues(src.ID, "table").Inc()
		s.logger.WithFields(logrus.Fields{
			"source":  src.ID,
			"heading": result.Heading,
		}).Debug("Menu table found without marker class")
	}

	sched := newSchedule(src.Source, src.Meals)
	sched.Date = result.Date
	for slot, lines := range result.Meals {
		sched.set(slot, lines)
	}
	if sched.Empty() {
		sched.Note = src.EmptyNote
	}

	return sched, nil
}

// load fetches, decodes and parses one page.
func (s *Service) load(ctx context.Context, src Source, target string) (*html.Node, error) {
	start := time.Now()
	body, err := s.fetcher.Fetch(ctx, target, src.Header)
	s.monitor.FetchDuration.WithLabelValues(src.ID).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"source":  src.ID,
			"url":     target,
			"timeout": IsTimeout(err),
		}).Warnf("Could not fetch menu page: %v", err)
		return nil, upstream("fetch", err)
	}

	text, encoding := src.Decoder.DecodeName(body)
	if encoding == "" {
		s.logger.WithField("source", src.ID).Warn("No configured encoding fits, decoded with replacement characters")
	}

	root, err := extract.Parse(text)
	if err != nil {
		return nil, extraction("parse", fmt.Errorf("could not parse page: %w", err))
	}

	return root, nil
}

func (s *Service) observe(source string, sched *Schedule, err error) {
	if err != nil {
		s.monitor.Requests.WithLabelValues(source, KindOf(err).String()).Inc()
		return
	}

	s.monitor.Requests.WithLabelValues(source, "ok").Inc()
	s.monitor.LastSuccess.WithLabelValues(source).SetToCurrentTime()
	if sched.Empty() {
		s.monitor.EmptySchedules.WithLabelValues(source).Inc()
	}
}
