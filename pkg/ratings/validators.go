package ratings

type RatePayload struct {
	Value *int `json:"value,omitempty" validate:"omitempty,min=1,max=5"`
}
