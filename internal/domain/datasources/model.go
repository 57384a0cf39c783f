package datasources

import (
	"time"

	"pet-admin-api/internal/domain/audit"
)

// DataSource apunta a una base externa. PasswordCipher es el ciphertext
// AES-GCM; el texto plano solo existe al crear/actualizar y al probar conexión.
type DataSource struct {
	ID             int64
	Code           string
	Name           string
	Remark         string
	DBType         string
	DBHost         string
	DBPort         int
	DBName         string
	DBUsername     string
	PasswordCipher string

	audit.Envelope
}

type CreateInput struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Remark     string `json:"remark"`
	DBType     string `json:"db_type"`
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUsername string `json:"db_username"`
	DBPassword string `json:"db_password"`
}

// UpdateInput: DBPassword vacío conserva la credencial guardada.
type UpdateInput struct {
	ID         int64  `json:"data_source_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Remark     string `json:"remark"`
	DBType     string `json:"db_type"`
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUsername string `json:"db_username"`
	DBPassword string `json:"db_password"`
}

// ListView no expone host ni credenciales.
type ListView struct {
	ID     int64  `json:"data_source_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Remark string `json:"remark"`
	DBType string `json:"db_type"`
	DBName string `json:"db_name"`
	audit.Envelope
}

// DetailView agrega la conexión, sin la password.
type DetailView struct {
	ListView
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBUsername string `json:"db_username"`
}

// Target es lo que necesita un Prober para abrir una conexión de prueba.
type Target struct {
	Type     string
	Host     string
	Port     int
	Name     string
	Username string
	Password string
}

func (d *DataSource) apply(in UpdateInput, passwordCipher string, actor int64, now time.Time) {
	d.Code = in.Code
	d.Name = in.Name
	d.Remark = in.Remark
	d.DBType = in.DBType
	d.DBHost = in.DBHost
	d.DBPort = in.DBPort
	d.DBName = in.DBName
	d.DBUsername = in.DBUsername
	if passwordCipher != "" {
		d.PasswordCipher = passwordCipher
	}
	d.Touch(actor, now)
}

func (d DataSource) ListView() ListView {
	return ListView{
		ID:       d.ID,
		Code:     d.Code,
		Name:     d.Name,
		Remark:   d.Remark,
		DBType:   d.DBType,
		DBName:   d.DBName,
		Envelope: d.Envelope,
	}
}

func (d DataSource) DetailView() DetailView {
	return DetailView{
		ListView:   d.ListView(),
		DBHost:     d.DBHost,
		DBPort:     d.DBPort,
		DBUsername: d.DBUsername,
	}
}
