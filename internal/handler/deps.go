package handler

import (
	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/chat"
	"pairchat/internal/app/friend"
	"pairchat/internal/app/storage"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
)

// AppDeps bundles the services every handler constructor needs.
type AppDeps struct {
	Config  *configs.AppConfig
	Hub     *broadcast.Hub
	Users   *user.Directory
	Graph   *friend.Graph
	Chats   *chat.Service
	Avatars storage.AvatarStorage
}
