package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlowChain — упорядоченная последовательность flows с пробросом результатов.
//
// Flows выполняются строго по порядку FlowIDs. Результат предыдущего flow
// становится входом следующего (целиком или через плейсхолдеры
// ${flowId.result}). Внешне видимый результат цепочки — LastResults
// flow с ID SelectedFlowID.
type FlowChain struct {
	// ID — уникальный идентификатор цепочки.
	ID string `json:"id"`

	// Name — имя цепочки.
	Name string `json:"name"`

	// FlowIDs — упорядоченный список ID flows.
	FlowIDs []string `json:"flow_ids"`

	// SelectedFlowID — flow, чей результат представляет результат цепочки.
	// Пустое значение — результат цепочки пуст.
	SelectedFlowID string `json:"selected_flow_id,omitempty"`

	// Status — статус последнего запуска цепочки.
	Status ChainStatus `json:"status"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// NewFlowChain создаёт цепочку с указанными flows.
func NewFlowChain(name string, flowIDs []string) *FlowChain {
	return &FlowChain{
		ID:        uuid.NewString(),
		Name:      name,
		FlowIDs:   flowIDs,
		Status:    ChainStatusIdle,
		CreatedAt: time.Now(),
	}
}

// ContainsFlow проверяет, входит ли flow в цепочку.
func (c *FlowChain) ContainsFlow(flowID string) bool {
	for _, id := range c.FlowIDs {
		if id == flowID {
			return true
		}
	}
	return false
}

// ExportBundle — формат экспорта цепочек вместе с их flows.
type ExportBundle struct {
	// Version — версия формата бандла.
	Version string `json:"version"`

	// Chains — цепочки по ID.
	Chains map[string]FlowChain `json:"chains"`

	// Flows — flows по ID.
	Flows map[string]Flow `json:"flows"`
}

// BundleVersion — текущая версия формата экспорта.
const BundleVersion = "1"

// NewExportBundle собирает бандл из цепочек и flows.
//
// structureOnly=true убирает результаты и входные значения —
// экспортируется только структура графов.
func NewExportBundle(chains []FlowChain, flows []Flow, structureOnly bool) *ExportBundle {
	b := &ExportBundle{
		Version: BundleVersion,
		Chains:  make(map[string]FlowChain, len(chains)),
		Flows:   make(map[string]Flow, len(flows)),
	}

	for _, c := range chains {
		if structureOnly {
			c.Status = ChainStatusIdle
		}
		b.Chains[c.ID] = c
	}

	for _, f := range flows {
		if structureOnly {
			f.Inputs = nil
			f.LastResults = nil
			f.Status = FlowStatusIdle
		}
		b.Flows[f.ID] = f
	}

	return b
}
