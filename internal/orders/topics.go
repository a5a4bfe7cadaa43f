package orders

const (
	TopicOrderNotification = "order.notification"
)

// Partition key = order_id, supaya semua notifikasi 1 order tetap berurutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
