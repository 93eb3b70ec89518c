package middleware

import "net/http"

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain собирает обработчик из мидлваров: первый в списке — внешний.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	wrapped := h
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}

	return wrapped
}

// responseRecorder перехватывает статус и объём ответа для журнала запросов.
// Если обработчик не вызвал WriteHeader, статус считается 200 — так же,
// как это делает сам net/http.
type responseRecorder struct {
	http.ResponseWriter

	status  int
	written int
}

func record(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.written += n

	return n, err
}
