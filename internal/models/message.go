package models

import "time"

type ParticipantType string

const (
	ParticipantCrew      ParticipantType = "crew"
	ParticipantCustomer  ParticipantType = "customer"
	ParticipantAdmin     ParticipantType = "admin"
	ParticipantSystem    ParticipantType = "system"
	ParticipantBroadcast ParticipantType = "broadcast"
)

type MessageType string

const (
	MessageTypeText         MessageType = "text"
	MessageTypeLocation     MessageType = "location"
	MessageTypePhoto        MessageType = "photo"
	MessageTypeStatusUpdate MessageType = "status_update"
	MessageTypeAlert        MessageType = "alert"
)

type MessagePriority string

const (
	PriorityLow    MessagePriority = "low"
	PriorityNormal MessagePriority = "normal"
	PriorityHigh   MessagePriority = "high"
	PriorityUrgent MessagePriority = "urgent"
)

// RealtimeMessage is a message as returned by GET /messages/:type/:id
type RealtimeMessage struct {
	ID            string          `json:"id"`
	SenderType    ParticipantType `json:"sender_type"`
	SenderID      string          `json:"sender_id"`
	RecipientType ParticipantType `json:"recipient_type"`
	RecipientID   string          `json:"recipient_id"`
	MessageType   MessageType     `json:"message_type"`
	Content       string          `json:"content"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	Priority      MessagePriority `json:"priority"`
	CreatedAt     time.Time       `json:"created_at"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	ReadAt        *time.Time      `json:"read_at,omitempty"`
}

// OutgoingMessage is the body for POST /messages/send
type OutgoingMessage struct {
	SenderType    ParticipantType `json:"sender_type"`
	SenderID      string          `json:"sender_id"`
	RecipientType ParticipantType `json:"recipient_type"`
	RecipientID   string          `json:"recipient_id"`
	MessageType   MessageType     `json:"message_type"`
	Content       string          `json:"content"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	Priority      MessagePriority `json:"priority,omitempty"`
}
