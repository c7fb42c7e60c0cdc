package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"vivaah/database"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PushSubscription stores a browser push endpoint per user.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

func GetVapidPublicKey(c *gin.Context) {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if publicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "publicKey": publicKey})
}

func SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := webpush.Subscription{
		Endpoint: req.Endpoint,
		Keys: webpush.Keys{
			P256dh: req.Keys.P256dh,
			Auth:   req.Keys.Auth,
		},
	}

	_, err := database.PushSubs.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"sub": sub}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("[SubscribePush] Failed to save subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Push subscription saved"})
}

// notifyPush sends a web-push notification to the user's subscribed browser,
// if any. Best effort; failures are logged and swallowed.
func notifyPush(userID primitive.ObjectID, title, body string) {
	privateKey := os.Getenv("VAPID_PRIVATE_KEY")
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	if privateKey == "" || publicKey == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var sub PushSubscription
	if err := database.PushSubs.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub); err != nil {
		return
	}

	payload, err := json.Marshal(map[string]string{"title": title, "body": body})
	if err != nil {
		return
	}

	resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
		Subscriber:      os.Getenv("VAPID_SUBJECT"),
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: privateKey,
		TTL:             60,
	})
	if err != nil {
		log.Printf("[notifyPush] Push to %s failed: %v", userID.Hex(), err)
		return
	}
	resp.Body.Close()
}
