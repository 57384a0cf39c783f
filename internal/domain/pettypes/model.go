package pettypes

// PetType es un catálogo simple: sin auditoría ni borrado lógico.
type PetType struct {
	ID    int64  `json:"pet_type_id"`
	Color string `json:"color"`
}

type CreateInput struct {
	Color string `json:"color"`
}

type UpdateInput struct {
	ID    int64  `json:"pet_type_id"`
	Color string `json:"color"`
}
