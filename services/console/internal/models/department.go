package models

import "encoding/json"

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (d *Department) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.ID = raw.ID
	if d.ID == "" {
		d.ID = raw.MongoID
	}
	d.Name = raw.Name
	return nil
}

type PasswordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type PasswordResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
