/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package discovery

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
)

func requestLogger(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.V(1).Info("HTTP request",
				"Method", r.Method,
				"Path", r.URL.Path,
				"Status", ww.Status(),
				"Bytes", ww.BytesWritten(),
				"Duration", time.Since(start),
				"Remote", r.RemoteAddr,
				"RequestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}
