package models

// AttributeUpdateRequest is the PUT /{collection}/:id payload.
// value is always sent as a string; Coerce decides its stored type.
type AttributeUpdateRequest struct {
	Attribute string `json:"attribute" binding:"required"`
	Value     string `json:"value"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
