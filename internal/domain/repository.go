package domain

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет нового клиента. Возвращает ErrAlreadyExists,
	// если запись с таким ID уже есть.
	Create(customer Customer) error
	// FindByID возвращает клиента или ErrCustomerNotFound, если его нет.
	FindByID(id string) (Customer, error)
}

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrAlreadyExists,
	// если запись с таким ID уже есть.
	Create(product Product) error
	// FindByID возвращает товар или ErrProductNotFound, если его нет.
	FindByID(id string) (Product, error)
	// FindAllByIDs возвращает найденное подмножество товаров по набору
	// идентификаторов. Порядок результата не гарантируется, отсутствующие
	// идентификаторы не считаются ошибкой.
	FindAllByIDs(ids []string) ([]Product, error)
	// List возвращает товары каталога с опциональным ограничением на количество.
	List(limit int) ([]Product, error)
	// DecrementStock атомарно списывает остатки по всем позициям.
	// Повторы одного товара в батче учитываются суммарно. Списание
	// происходит только если остатка хватает по каждой позиции; иначе
	// возвращается InsufficientStockError проблемной позиции и ни один
	// остаток не меняется. Порядок проверки позиций реализация выбирает
	// сама.
	DecrementStock(decrements []StockDecrement) error
	// Restock увеличивает остаток товара на qty единиц.
	Restock(id string, qty int32) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями одной атомарной
	// операцией: частично записанный заказ не должен быть наблюдаем.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Delete удаляет заказ вместе с позициями. Используется как компенсация,
	// когда списание остатков не прошло после вставки заказа.
	Delete(id string) error
}
