package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kotrzina/knue-meals/pkg/menu"
	"github.com/kotrzina/knue-meals/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type errorOutput struct {
	Detail    string `json:"detail"`
	Retryable bool   `json:"retryable,omitempty"`
}

type dateMealsOutput struct {
	Date  string     `json:"date"`
	Meals slotOutput `json:"meals"`
}

type dateMealOutput struct {
	Date  string   `json:"date"`
	Meal  string   `json:"meal"`
	Items []string `json:"items"`
}

type staffMealsOutput struct {
	Source    string     `json:"source"`
	Day       string     `json:"day"`
	Cafeteria string     `json:"cafeteria"`
	Date      *string    `json:"date"`
	Meals     slotOutput `json:"meals"`
	Note      string     `json:"note,omitempty"`
}

// slotOutput renders the meals object with keys in page order.
type slotOutput struct {
	slots []string
	meals map[string][]string
}

func newSlotOutput(sched *menu.Schedule) slotOutput {
	return slotOutput{slots: sched.Slots, meals: sched.Meals}
}

func (o slotOutput) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, slot := range o.slots {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(slot)
		if err != nil {
			return nil, err
		}
		items := o.meals[slot]
		if items == nil {
			items = []string{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DateOutput is the response body of a date addressed lookup. A non-empty
// meal narrows it to that slot's items.
func DateOutput(sched *menu.Schedule, meal string) any {
	var date string
	if d := sched.DateString(); d != nil {
		date = *d
	}

	if meal != "" {
		items := sched.Meals[meal]
		if items == nil {
			items = []string{}
		}
		return dateMealOutput{Date: date, Meal: meal, Items: items}
	}

	return dateMealsOutput{Date: date, Meals: newSlotOutput(sched)}
}

// StaffOutput is the response body of a weekday addressed lookup.
func StaffOutput(sched *menu.Schedule, day string) any {
	return staffMealsOutput{
		Source:    sched.Source,
		Day:       day,
		Cafeteria: sched.Label,
		Date:      sched.DateString(),
		Meals:     newSlotOutput(sched),
		Note:      sched.Note,
	}
}

func (hr *HandlerRepository) healthHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(utils.GetOkJSON())
	}
}

func (hr *HandlerRepository) dateMealsHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var req menu.DateRequest
		for _, p := range []struct {
			name  string
			value *int
		}{
			{"y", &req.Year},
			{"m", &req.Month},
			{"d", &req.Day},
		} {
			v, err := intParam(query.Get(p.name), p.name)
			if err != nil {
				hr.writeJSON(w, http.StatusBadRequest, errorOutput{Detail: err.Error()})
				return
			}
			*p.value = v
		}
		req.Meal = strings.TrimSpace(query.Get("meal"))

		sched, err := hr.service.DateMenu(r.Context(), req)
		if err != nil {
			hr.writeError(w, err)
			return
		}

		hr.writeJSON(w, http.StatusOK, DateOutput(sched, req.Meal))
	}
}

func (hr *HandlerRepository) staffMealsHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		day := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("day")))

		sched, err := hr.service.WeekdayMenu(r.Context(), menu.WeekdayRequest{Day: day})
		if err != nil {
			hr.writeError(w, err)
			return
		}

		hr.writeJSON(w, http.StatusOK, StaffOutput(sched, day))
	}
}

func (hr *HandlerRepository) metricsHandler() http.Handler {
	return promhttp.HandlerFor(
		hr.monitor.Registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Registry:          hr.monitor.Registry,
		},
	)
}

// writeError is the single place where a failure kind becomes a status code.
func (hr *HandlerRepository) writeError(w http.ResponseWriter, err error) {
	status, out := errorResponse(err)
	if status >= http.StatusInternalServerError {
		hr.logger.WithFields(logrus.Fields{
			"kind":   menu.KindOf(err).String(),
			"status": status,
		}).Warnf("Menu request failed: %v", err)
	}
	hr.writeJSON(w, status, out)
}

func errorResponse(err error) (int, errorOutput) {
	switch menu.KindOf(err) {
	case menu.KindInvalidInput:
		return http.StatusBadRequest, errorOutput{Detail: err.Error()}
	case menu.KindUpstream:
		if code := menu.UpstreamStatus(err); code != 0 {
			return http.StatusBadGateway, errorOutput{
				Detail: fmt.Sprintf("Upstream HTTP error: %d", code),
			}
		}
		return http.StatusBadGateway, errorOutput{
			Detail:    "Upstream request failed: " + err.Error(),
			Retryable: menu.IsTimeout(err),
		}
	default:
		return http.StatusInternalServerError, errorOutput{Detail: "Parse error: " + err.Error()}
	}
}

func (hr *HandlerRepository) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		hr.logger.Errorf("Could not marshal response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func intParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
