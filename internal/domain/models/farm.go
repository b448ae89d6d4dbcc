package models

// Profile describes the beekeeping operation printed on registers and labels.
type Profile struct {
	CompanyName  string `json:"companyName" bson:"companyName"`
	NAPI         string `json:"napi" bson:"napi"`
	SIRET        string `json:"siret" bson:"siret"`
	Address      string `json:"address" bson:"address"`
	Status       string `json:"status" bson:"status"`
	CreationDate string `json:"creationDate" bson:"creationDate"`
	VetName      string `json:"vetName" bson:"vetName"`
	VetAddress   string `json:"vetAddress" bson:"vetAddress"`
}

// Apiary is a named bee yard.
type Apiary struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Location string `json:"location" bson:"location"`
}

// Hive belongs to exactly one apiary.
type Hive struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	ApiaryID string `json:"apiaryId" bson:"apiaryId"`
}

// MovementType enumerates the usual colony movements. Free text is accepted too.
type MovementType string

const (
	MovementTranshumance MovementType = "Transhumance"
	MovementPurchase     MovementType = "Achat"
	MovementSale         MovementType = "Vente"
	MovementSplit        MovementType = "Division"
	MovementMerge        MovementType = "Réunion"
	MovementDeath        MovementType = "Mortalité"
)

// ColonyMovement records colonies entering, leaving or moving between apiaries.
type ColonyMovement struct {
	ID                  string       `json:"id" bson:"_id"`
	Date                string       `json:"date" bson:"date"`
	Type                MovementType `json:"type" bson:"type"`
	Description         string       `json:"description" bson:"description"`
	OriginApiaryID      string       `json:"originApiaryId,omitempty" bson:"originApiaryId,omitempty"`
	DestinationApiaryID string       `json:"destinationApiaryId,omitempty" bson:"destinationApiaryId,omitempty"`
	Quantity            int          `json:"quantity" bson:"quantity"`
}

// SanitaryIntervention is a veterinary treatment entry of the breeding register.
type SanitaryIntervention struct {
	ID          string   `json:"id" bson:"_id"`
	Date        string   `json:"date" bson:"date"`
	DrugName    string   `json:"drugName" bson:"drugName"`
	BatchNumber string   `json:"batchNumber" bson:"batchNumber"`
	Quantity    string   `json:"quantity" bson:"quantity"`
	Posology    string   `json:"posology" bson:"posology"`
	Notes       string   `json:"notes,omitempty" bson:"notes,omitempty"`
	ApiaryID    string   `json:"apiaryId,omitempty" bson:"apiaryId,omitempty"`
	HiveIDs     []string `json:"hiveIds,omitempty" bson:"hiveIds,omitempty"`

	// LegacyHiveID is the single-hive field of old backups, folded into HiveIDs on import.
	LegacyHiveID string `json:"hiveId,omitempty" bson:"-"`
}

// Feeding records syrup or candy given to an apiary.
type Feeding struct {
	ID       string   `json:"id" bson:"_id"`
	Date     string   `json:"date" bson:"date"`
	FoodType string   `json:"foodType" bson:"foodType"`
	Quantity string   `json:"quantity" bson:"quantity"`
	ApiaryID string   `json:"apiaryId" bson:"apiaryId"`
	HiveIDs  []string `json:"hiveIds,omitempty" bson:"hiveIds,omitempty"`

	// LegacyHiveID is the single-hive field of old backups, folded into HiveIDs on import.
	LegacyHiveID string `json:"hiveId,omitempty" bson:"-"`
}

// Harvest is a raw honey extraction. QuantityKg feeds the indirect cost denominator.
type Harvest struct {
	ID         string  `json:"id" bson:"_id"`
	Date       string  `json:"date" bson:"date"`
	ApiaryID   string  `json:"apiaryId" bson:"apiaryId"`
	HoneyType  string  `json:"honeyType" bson:"honeyType"`
	QuantityKg float64 `json:"quantityKg" bson:"quantityKg"`
	BatchID    string  `json:"batchId" bson:"batchId"`
}

func (a Apiary) RecordID() string { return a.ID }

func (a Apiary) WithID(id string) Apiary { a.ID = id; return a }

func (h Hive) RecordID() string { return h.ID }

func (h Hive) WithID(id string) Hive { h.ID = id; return h }

func (m ColonyMovement) RecordID() string { return m.ID }

func (m ColonyMovement) WithID(id string) ColonyMovement { m.ID = id; return m }

func (i SanitaryIntervention) RecordID() string { return i.ID }

func (i SanitaryIntervention) WithID(id string) SanitaryIntervention { i.ID = id; return i }

func (f Feeding) RecordID() string { return f.ID }

func (f Feeding) WithID(id string) Feeding { f.ID = id; return f }

func (h Harvest) RecordID() string { return h.ID }

func (h Harvest) WithID(id string) Harvest { h.ID = id; return h }
