package transtasks

import (
	"time"

	"pet-admin-api/internal/domain/audit"
)

// TransTask es solo el registro de una tarea de copia de tabla; no ejecuta nada.
type TransTask struct {
	ID            int64
	DataSourceID  int64
	TableName     string
	TableComment  string
	Remark        string
	RowCount      int64
	LastTransTime time.Time

	audit.Envelope
}

type CreateInput struct {
	DataSourceID int64  `json:"data_source_id"`
	TableName    string `json:"table_name"`
	TableComment string `json:"table_comment"`
	Remark       string `json:"remark"`
}

type UpdateInput struct {
	ID           int64  `json:"trans_task_id"`
	DataSourceID int64  `json:"data_source_id"`
	TableName    string `json:"table_name"`
	TableComment string `json:"table_comment"`
	Remark       string `json:"remark"`
}

type View struct {
	ID            int64     `json:"trans_task_id"`
	DataSourceID  int64     `json:"data_source_id"`
	TableName     string    `json:"table_name"`
	TableComment  string    `json:"table_comment"`
	Remark        string    `json:"remark"`
	RowCount      int64     `json:"row_count"`
	LastTransTime time.Time `json:"last_trans_time"`
	audit.Envelope
}

// newTask arranca con row_count 0 y last_trans_time = creación.
func newTask(in CreateInput, actor int64, now time.Time) TransTask {
	return TransTask{
		DataSourceID:  in.DataSourceID,
		TableName:     in.TableName,
		TableComment:  in.TableComment,
		Remark:        in.Remark,
		RowCount:      0,
		LastTransTime: now.UTC(),
		Envelope:      audit.New(actor, now),
	}
}

// apply no toca row_count ni last_trans_time.
func (t *TransTask) apply(in UpdateInput, actor int64, now time.Time) {
	t.DataSourceID = in.DataSourceID
	t.TableName = in.TableName
	t.TableComment = in.TableComment
	t.Remark = in.Remark
	t.Touch(actor, now)
}

func (t TransTask) View() View {
	return View{
		ID:            t.ID,
		DataSourceID:  t.DataSourceID,
		TableName:     t.TableName,
		TableComment:  t.TableComment,
		Remark:        t.Remark,
		RowCount:      t.RowCount,
		LastTransTime: t.LastTransTime,
		Envelope:      t.Envelope,
	}
}
