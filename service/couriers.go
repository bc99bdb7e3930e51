package service

import (
	"hash/fnv"

	"food-ordering-api/models"
)

var couriers = []models.DeliveryPerson{
	{ID: "delivery-1", Name: "Carlos Santos", Phone: "(11) 99999-9999", Vehicle: "Moto Honda CG 160", Rating: 4.8},
	{ID: "delivery-2", Name: "Ana Oliveira", Phone: "(11) 98888-7777", Vehicle: "Moto Yamaha Factor 150", Rating: 4.9},
	{ID: "delivery-3", Name: "Rafael Lima", Phone: "(11) 97777-6666", Vehicle: "Bicicleta elétrica", Rating: 4.7},
}

// AssignCourier picks a courier for the order. The same order id always gets
// the same courier.
func AssignCourier(orderID string) *models.DeliveryPerson {
	h := fnv.New32a()
	h.Write([]byte(orderID))
	dp := couriers[h.Sum32()%uint32(len(couriers))]
	return &dp
}
