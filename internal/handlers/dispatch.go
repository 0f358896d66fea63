package handlers

import (
	"net/http"

	"github.com/pr-poehali-dev/apartment-rental-moscow/internal/errs"
)

// routeKey однозначно выбирает операцию внутри эндпоинта
type routeKey struct {
	Method string
	Entity string
	Action string
	WithID bool
}

type dispatcher struct {
	routes map[routeKey]handlerFunc
}

func newDispatcher() dispatcher {
	return dispatcher{routes: make(map[routeKey]handlerFunc)}
}

func (d dispatcher) handle(key routeKey, fn handlerFunc) {
	d.routes[key] = fn
}

// serve выполняет операцию по ключу; любое незарегистрированное сочетание,
// включая чужой метод или отсутствующий id, получает 404.
func (d dispatcher) serve(key routeKey, w http.ResponseWriter, r *http.Request) error {
	if fn, ok := d.routes[key]; ok {
		return fn(w, r)
	}
	return errs.NewNotFoundError("Endpoint not found")
}

// methodOnly - эндпоинт с одной операцией: любой другой метод получает 405.
func methodOnly(method string, fn handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if r.Method != method {
			return errs.NewMethodNotAllowedError()
		}
		return fn(w, r)
	}
}
