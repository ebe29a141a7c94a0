package models

import "time"

// Room is a top-level named container of trays.
type Room struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Trays []Tray `gorm:"constraint:OnDelete:CASCADE" json:"trays"`
}

// IsPlanted reports whether any tray in the room is planted.
func (r Room) IsPlanted() bool {
	for i := range r.Trays {
		if r.Trays[i].IsPlanted() {
			return true
		}
	}
	return false
}

// DaysSincePlanted returns the smallest elapsed-days value across planted
// trays, or 0 when nothing is planted.
func (r Room) DaysSincePlanted() int {
	days := 0
	found := false
	for i := range r.Trays {
		if !r.Trays[i].IsPlanted() {
			continue
		}
		d := r.Trays[i].DaysSincePlanted()
		if !found || d < days {
			days = d
			found = true
		}
	}
	return days
}

// DaysForHarvest returns the smallest days-until-harvest across planted trays
// with a harvest date set, or 0 when none qualifies.
func (r Room) DaysForHarvest() int {
	days := 0
	found := false
	for i := range r.Trays {
		t := &r.Trays[i]
		if !t.IsPlanted() || t.HarvestDate == nil {
			continue
		}
		d := t.DaysUntilHarvest()
		if !found || d < days {
			days = d
			found = true
		}
	}
	return days
}

// Tray is a plantable unit inside a room, holding one or more lights.
type Tray struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RoomID      uint       `gorm:"index;not null" json:"room_id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	PlantedDate *time.Time `json:"planted_date,omitempty"`
	HarvestDate *time.Time `json:"harvest_date,omitempty"`
	Lights      []Light    `gorm:"constraint:OnDelete:CASCADE" json:"lights"`
}

// IsPlanted reports whether a planting date has been recorded.
func (t Tray) IsPlanted() bool { return t.PlantedDate != nil }

// DaysSincePlanted returns whole days elapsed since planting, 0 if unplanted.
func (t Tray) DaysSincePlanted() int {
	if t.PlantedDate == nil {
		return 0
	}
	return int(time.Since(*t.PlantedDate).Hours() / 24)
}

// DaysUntilHarvest returns whole days remaining until the harvest date,
// 0 if no harvest date is set.
func (t Tray) DaysUntilHarvest() int {
	if t.HarvestDate == nil {
		return 0
	}
	return int(time.Until(*t.HarvestDate).Hours() / 24)
}

// Light is a fixed-size grid of pots inside a tray. Its pot count always
// equals Width*Height.
type Light struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	TrayID uint  `gorm:"index;not null" json:"tray_id"`
	Width  int   `gorm:"not null" json:"width"`
	Height int   `gorm:"not null" json:"height"`
	Pots   []Pot `gorm:"constraint:OnDelete:CASCADE" json:"pots"`
}

// Capacity returns the number of pots the light holds.
func (l Light) Capacity() int { return l.Width * l.Height }

// Pot is the smallest unit, optionally holding one strain.
type Pot struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	LightID  uint    `gorm:"index;not null" json:"light_id"`
	StrainID *uint   `gorm:"index" json:"strain_id,omitempty"`
	Strain   *Strain `json:"strain,omitempty"`
}
