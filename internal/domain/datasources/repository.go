package datasources

import "context"

type Repository interface {
	Create(ctx context.Context, d DataSource) (int64, error)
	GetByID(ctx context.Context, id int64) (DataSource, error)
	List(ctx context.Context) ([]DataSource, error)
	Update(ctx context.Context, d DataSource, expectedVersion int64) error
	HardDelete(ctx context.Context, id int64) error
}

// Cipher cifra/descifra la password de la base externa.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(encoded string) (string, error)
}

// Prober abre una conexión descartable contra el destino y la cierra.
type Prober interface {
	Probe(ctx context.Context, t Target) error
}
