package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pr-poehali-dev/apartment-rental-moscow/db"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/config"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/errs"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/media"
	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/notify"
	"github.com/rs/zerolog"
)

// Ограничение размера тела; картинки приходят в base64, поэтому запас
const maxBodyBytes = 16 << 20

// Handler держит зависимости всех эндпоинтов
type Handler struct {
	store    StorageInterface
	notifier Notifier
	uploader Uploader
	cfg      *config.Config
	log      zerolog.Logger
	validate *validator.Validate

	admin   dispatcher
	catalog dispatcher
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, notifier Notifier, uploader Uploader, cfg *config.Config, log zerolog.Logger) *Handler {
	h := &Handler{
		store:    store,
		notifier: notifier,
		uploader: uploader,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
	}
	h.admin = h.adminRoutes()
	h.catalog = h.catalogRoutes()
	return h
}

// handlerFunc - обработчик, который возвращает ошибку вместо записи ответа
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap переводит ошибку обработчика в JSON-ответ.
func (h *Handler) wrap(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *errs.HTTPError
	var upstream *notify.UpstreamError
	switch {
	case errors.As(err, &httpErr):
	case errors.Is(err, db.ErrNotFound):
		httpErr = errs.NewNotFoundError("Not found")
	case errors.Is(err, media.ErrNoFile):
		httpErr = errs.NewBadRequestError(err.Error())
	case errors.Is(err, notify.ErrNotConfigured):
		h.log.Error().Err(err).Str("uri", r.RequestURI).Msg("relay is not configured")
		httpErr = errs.NewInternalServerError()
		httpErr.Message = err.Error()
	case errors.As(err, &upstream):
		h.log.Error().Err(err).Str("uri", r.RequestURI).Msg("telegram rejected message")
		httpErr = errs.NewInternalServerError()
		httpErr.Message = upstream.Description
	default:
		h.log.Error().Err(err).Str("method", r.Method).Str("uri", r.RequestURI).Msg("request failed")
		body := map[string]string{"error": "Internal server error"}
		if h.cfg != nil && h.cfg.ExposeErrorDetails {
			body["details"] = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}
	writeJSON(w, httpErr.Status, httpErr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON читает тело запроса; пустое тело оставляет v нетронутым.
// Битый JSON - это 500, как и любая другая непредвиденная ошибка.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// queryID читает числовой параметр; ok == false, если параметра нет.
func queryID(r *http.Request, name string) (int64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, true, errs.NewBadRequestError("Invalid " + name)
	}
	return id, true, nil
}

// requireID - как queryID, но отсутствие параметра тоже 400.
func requireID(r *http.Request, name string) (int64, error) {
	id, ok, err := queryID(r, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.NewBadRequestError(name + " required")
	}
	return id, nil
}

// notFoundAs подменяет db.ErrNotFound сообщением для клиента.
func notFoundAs(err error, message string) error {
	if errors.Is(err, db.ErrNotFound) {
		return errs.NewNotFoundError(message)
	}
	return err
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("database ping failed")
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
