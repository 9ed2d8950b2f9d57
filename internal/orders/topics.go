package orders

// Partition key = order reference, so every event of one order stays in order.
func PartitionKey(orderReference string) []byte { return []byte(orderReference) }
