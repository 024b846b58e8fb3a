// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/calcis/storefront/src/frontend/catalog"
	"github.com/calcis/storefront/src/frontend/handoff"
	"github.com/calcis/storefront/src/frontend/validator"
)

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{
		"catalogPath": catalogPath,
		"productPath": func(id string) string { return baseUrl + "/produto/" + url.PathEscape(id) },
	}).ParseGlob("templates/*.html"))

func (fe *frontendServer) welcomeHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	s, returning := currentShopper(r)
	log.WithField("returning", returning).Debug("welcome")
	if err := templates.ExecuteTemplate(w, "welcome", injectCommonTemplateData(r, map[string]interface{}{
		"nome":     s.Name,
		"telefone": s.Phone,
	})); err != nil {
		log.Error(err)
	}
}

func (fe *frontendServer) identityHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	payload := validator.IdentityPayload{Name: r.FormValue("nome"), Phone: r.FormValue("telefone")}
	if err := validator.Check(&payload); err != nil {
		log.WithField("error", err).Debug("identity rejected")
		w.WriteHeader(http.StatusUnprocessableEntity)
		if templateErr := templates.ExecuteTemplate(w, "welcome", injectCommonTemplateData(r, map[string]interface{}{
			"nome":       payload.Name,
			"telefone":   payload.Phone,
			"form_error": err.Error(),
		})); templateErr != nil {
			log.Error(templateErr)
		}
		return
	}
	setShopper(w, shopper{Name: payload.Name, Phone: payload.Phone})
	log.Info("identity captured")
	w.Header().Set("Location", baseUrl+"/numeracao")
	w.WriteHeader(http.StatusSeeOther)
}

func (fe *frontendServer) sizesHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	last := lastSize(r)
	log.WithField("size.last", last).Debug("serving size grid")

	type sizeView struct {
		Size     catalog.Size
		Selected bool
	}
	grid := catalog.Grid()
	sizes := make([]sizeView, len(grid))
	for i, s := range grid {
		sizes[i] = sizeView{Size: s, Selected: s == last}
	}
	if err := templates.ExecuteTemplate(w, "sizes", injectCommonTemplateData(r, map[string]interface{}{
		"sizes": sizes,
	})); err != nil {
		log.Error(err)
	}
}

// selectSizeHandler prefetches the catalog of the chosen size and hands it
// to the catalog page. A failed prefetch still navigates.
func (fe *frontendServer) selectSizeHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	payload := validator.SizePayload{Size: r.FormValue("numeracao")}
	if err := validator.Check(&payload); err != nil {
		renderHTTPError(log, r, w, err, http.StatusUnprocessableEntity)
		return
	}
	size := catalog.NormalizeSize(payload.Size)

	nav, err := fe.orchestrator.Select(r.Context(), sessionID(r), size)
	switch {
	case errors.Is(err, handoff.ErrSuperseded):
		log.WithField("size", size).Debug("selection superseded")
		w.WriteHeader(http.StatusConflict)
		return
	case err != nil:
		log.WithField("size", size).Debug("selection canceled")
		return
	}

	setLastSize(w, size)
	if nav.Token != "" {
		setHandoffToken(w, nav.Token, fe.handoffTTL)
	} else {
		clearHandoffToken(w)
	}
	log.WithField("size", size).WithField("prefetch", nav.Prefetch).Info("size selected")
	w.Header().Set("Location", catalogPath(size))
	w.WriteHeader(http.StatusSeeOther)
}

func (fe *frontendServer) catalogHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	size := catalog.NormalizeSize(mux.Vars(r)["numeracao"])
	if size == "" {
		renderHTTPError(log, r, w, errors.New("size not specified"), http.StatusBadRequest)
		return
	}

	token := handoffToken(r)
	if token != "" {
		clearHandoffToken(w)
	}
	setLastSize(w, size)

	arrival, err := fe.orchestrator.Arrive(r.Context(), sessionID(r), token, size)
	if err != nil {
		if r.Context().Err() != nil {
			log.WithField("size", size).Debug("catalog fetch canceled")
			return
		}
		log.WithField("size", size).WithField("error", err).Warn("could not load catalog")
		w.WriteHeader(http.StatusBadGateway)
		if templateErr := templates.ExecuteTemplate(w, "catalog", injectCommonTemplateData(r, map[string]interface{}{
			"size":       size,
			"load_error": true,
		})); templateErr != nil {
			log.Error(templateErr)
		}
		return
	}

	ds := arrival.Dataset
	split := catalog.Partition(ds.Products, string(size))
	available := catalog.Shuffle(split.Available, ds.ID)
	fe.overlays.enter(sessionID(r), ds.Products)

	log.WithFields(logrus.Fields{
		"size":      size,
		"source":    arrival.Source,
		"dataset":   ds.ID,
		"available": len(available),
		"sold_out":  len(split.SoldOut),
	}).Debug("serving catalog")

	if err := templates.ExecuteTemplate(w, "catalog", injectCommonTemplateData(r, map[string]interface{}{
		"size":      size,
		"empty":     ds.Empty(),
		"available": fe.cards.BuildAll(available, string(size)),
		"sold_out":  fe.cards.BuildAll(split.SoldOut, string(size)),
	})); err != nil {
		log.Error(err)
	}
}

func (fe *frontendServer) productHandler(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(ctxKeyLog{}).(logrus.FieldLogger)
	id := mux.Vars(r)["id"]
	if id == "" {
		renderHTTPError(log, r, w, errors.New("product id not specified"), http.StatusBadRequest)
		return
	}
	size := lastSize(r)
	log.WithField("id", id).WithField("size", size).Debug("serving product page")

	p, err := fe.directory.Product(r.Context(), id)
	if err != nil {
		switch {
		case r.Context().Err() != nil:
			log.WithField("id", id).Debug("product fetch canceled")
		case errors.Is(err, catalog.ErrNotFound):
			renderHTTPError(log, r, w, errors.Wrapf(err, "product %s", id), http.StatusNotFound)
		default:
			renderHTTPError(log, r, w, errors.Wrap(err, "could not retrieve product"), http.StatusBadGateway)
		}
		return
	}
	fe.overlays.enter(sessionID(r), []catalog.Product{*p})

	if err := templates.ExecuteTemplate(w, "product", injectCommonTemplateData(r, map[string]interface{}{
		"product": fe.cards.Build(*p, string(size)),
		"size":    size,
	})); err != nil {
		log.Error(err)
	}
}

func renderHTTPError(log logrus.FieldLogger, r *http.Request, w http.ResponseWriter, err error, code int) {
	log.WithField("error", err).Error("request error")
	errMsg := fmt.Sprintf("%+v", err)

	w.WriteHeader(code)

	if templateErr := templates.ExecuteTemplate(w, "error", injectCommonTemplateData(r, map[string]interface{}{
		"error":       errMsg,
		"status_code": code,
		"status":      http.StatusText(code),
	})); templateErr != nil {
		log.Println(templateErr)
	}
}

func injectCommonTemplateData(r *http.Request, payload map[string]interface{}) map[string]interface{} {
	s, _ := currentShopper(r)
	data := map[string]interface{}{
		"session_id":    sessionID(r),
		"request_id":    r.Context().Value(ctxKeyRequestID{}),
		"shopper_name":  s.Name,
		"selected_size": lastSize(r),
		"currentYear":   time.Now().Year(),
		"baseUrl":       baseUrl,
	}

	for k, v := range payload {
		data[k] = v
	}

	return data
}

func catalogPath(size catalog.Size) string {
	return baseUrl + "/catalogo/" + url.PathEscape(string(size))
}
