package scenario

import "errors"

var ErrNotFound = errors.New("scenario not found")

const FreeKey = "free"

// Scenario — заранее заданная ролевая сцена, неизменяема после старта.
type Scenario struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Prompt   string `json:"-"`
	Greeting string `json:"greeting,omitempty"`
}

func (s Scenario) HasGreeting() bool { return s.Greeting != "" }

type Service interface {
	List() []Scenario
	Get(key string) (Scenario, error)
}

// Personas — роли ассистента для свободного чата.
var Personas = []string{
	"a helpful teacher",
	"a friendly doctor",
	"a shopkeeper in a toy store",
	"a space alien learning Earth language",
}
